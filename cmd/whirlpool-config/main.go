package main

import (
	"os"

	"github.com/malbeclabs/whirlpools/internal/cli"
	"github.com/malbeclabs/whirlpools/internal/metrics"
)

var (
	// Set by LDFLAGS
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	metrics.BuildInfo.WithLabelValues(version, commit, date).Set(1)
	os.Exit(int(cli.Run()))
}
