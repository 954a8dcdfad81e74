package registry_test

import (
	"flag"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/lmittmann/tint"
	"github.com/malbeclabs/whirlpools/internal/registry"
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

// fixture is an initialized config with known authority keys.
type fixture struct {
	registry  *registry.Registry
	store     *registry.MemoryStore
	programID solana.PublicKey
	record    *registry.ConfigRecord

	feeAuthority                  solana.PrivateKey
	collectProtocolFeesAuthority  solana.PrivateKey
	rewardEmissionsSuperAuthority solana.PrivateKey
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:                         registry.NewMemoryStore(),
		programID:                     solana.NewWallet().PublicKey(),
		feeAuthority:                  solana.NewWallet().PrivateKey,
		collectProtocolFeesAuthority:  solana.NewWallet().PrivateKey,
		rewardEmissionsSuperAuthority: solana.NewWallet().PrivateKey,
	}
	f.registry = registry.New(log, f.store, f.programID)

	record, err := f.registry.Initialize(t.Context(), registry.InitializeRequest{
		Address: solana.NewWallet().PublicKey(),
		Config: whirlpool.WhirlpoolsConfig{
			FeeAuthority:                  f.feeAuthority.PublicKey(),
			CollectProtocolFeesAuthority:  f.collectProtocolFeesAuthority.PublicKey(),
			RewardEmissionsSuperAuthority: f.rewardEmissionsSuperAuthority.PublicKey(),
			DefaultProtocolFeeRate:        300,
		},
	})
	require.NoError(t, err)
	f.record = record
	return f
}

func (f *fixture) authorityKey(kind whirlpool.AuthorityKind) solana.PrivateKey {
	switch kind {
	case whirlpool.AuthorityKindFee:
		return f.feeAuthority
	case whirlpool.AuthorityKindCollectProtocolFees:
		return f.collectProtocolFeesAuthority
	default:
		return f.rewardEmissionsSuperAuthority
	}
}

func signedSetAuthority(t *testing.T, record *registry.ConfigRecord, kind whirlpool.AuthorityKind, next solana.PublicKey, key solana.PrivateKey) *registry.ChangeRequest {
	t.Helper()
	req := registry.NewSetAuthorityRequest(record, kind, next)
	require.NoError(t, req.Sign(key))
	return req
}
