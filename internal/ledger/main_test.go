package ledger_test

import (
	"flag"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/lmittmann/tint"
	"github.com/malbeclabs/whirlpools/internal/ledger"
	"github.com/malbeclabs/whirlpools/smartcontract/sdk/go/whirlpool"
	"github.com/stretchr/testify/require"
)

var (
	log *slog.Logger
)

func TestMain(m *testing.M) {
	flag.Parse()
	verbose := false
	if vFlag := flag.Lookup("test.v"); vFlag != nil && vFlag.Value.String() == "true" {
		verbose = true
	}
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	log = slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level:      logLevel,
		TimeFormat: time.RFC3339,
		AddSource:  true,
	}))

	os.Exit(m.Run())
}

type fixture struct {
	ledger    *ledger.Ledger
	client    *whirlpool.Client
	payer     solana.PrivateKey
	programID solana.PublicKey

	config solana.PublicKey

	// feeAuthority, collectAuthority and rewardsAuthority hold the config authorities at
	// initialization.
	feeAuthority     solana.PrivateKey
	collectAuthority solana.PrivateKey
	rewardsAuthority solana.PrivateKey
}

func newFixture(t *testing.T, opts ...whirlpool.Option) *fixture {
	t.Helper()

	programID := solana.NewWallet().PublicKey()
	payer := solana.NewWallet().PrivateKey
	l := ledger.New(log, programID)

	f := &fixture{
		ledger:           l,
		client:           whirlpool.New(log, l, &payer, programID, opts...),
		payer:            payer,
		programID:        programID,
		feeAuthority:     solana.NewWallet().PrivateKey,
		collectAuthority: solana.NewWallet().PrivateKey,
		rewardsAuthority: solana.NewWallet().PrivateKey,
	}

	configKey := solana.NewWallet().PrivateKey
	_, _, err := f.client.InitializeConfig(t.Context(), configKey, whirlpool.InitializeConfigInstructionConfig{
		FeeAuthority:                  f.feeAuthority.PublicKey(),
		CollectProtocolFeesAuthority:  f.collectAuthority.PublicKey(),
		RewardEmissionsSuperAuthority: f.rewardsAuthority.PublicKey(),
		DefaultProtocolFeeRate:        300,
	})
	require.NoError(t, err)
	f.config = configKey.PublicKey()
	return f
}

func (f *fixture) authorityKey(kind whirlpool.AuthorityKind) solana.PrivateKey {
	switch kind {
	case whirlpool.AuthorityKindFee:
		return f.feeAuthority
	case whirlpool.AuthorityKindCollectProtocolFees:
		return f.collectAuthority
	default:
		return f.rewardsAuthority
	}
}
