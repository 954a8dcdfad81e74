package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ResultSuccess = "success"
	ResultError   = "error"

	RejectionReasonSignature = "signature"
	RejectionReasonAuthority = "authority"
	RejectionReasonArgument  = "argument"
	RejectionReasonStale     = "stale"
	RejectionReasonNotFound  = "not_found"
)

var (
	// Build information metric
	BuildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "whirlpools_config_build_info",
		Help: "Build information of the whirlpools config tooling",
	}, []string{"version", "commit", "date"})

	// Registry metrics
	RegistryInitializationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "whirlpools_config_registry_initializations_total",
		Help: "Total number of config initializations by result",
	}, []string{"result"})

	RegistryTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "whirlpools_config_registry_transitions_total",
		Help: "Total number of committed or failed config transitions by kind",
	}, []string{"kind", "result"})

	RegistryRejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "whirlpools_config_registry_rejections_total",
		Help: "Total number of rejected change requests by kind and reason",
	}, []string{"kind", "reason"})

	RegistryRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "whirlpools_config_registry_retries_total",
		Help: "Total number of change attempts retried after a stale state error",
	})

	// Ledger metrics
	LedgerTransactionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "whirlpools_config_ledger_transactions_total",
		Help: "Total number of transactions processed by the ledger by status",
	}, []string{"status"})
)
