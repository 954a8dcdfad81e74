// Package ledger is an in-process stand-in for a Solana cluster running the Whirlpool program's
// config instructions. It serves the RPC calls the whirlpool SDK makes, verifies transaction
// signatures and executes config instructions through the authority registry, one transaction
// at a time.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/jonboulle/clockwork"
	"github.com/malbeclabs/whirlpools/internal/metrics"
	"github.com/malbeclabs/whirlpools/internal/registry"
)

const (
	// lamportsPerSignature is the fee charged per transaction signature.
	lamportsPerSignature = 5_000

	// blockhashValidity is the number of slots a blockhash can be used for.
	blockhashValidity = 150

	// configAccountLamports is the rent-exempt balance reported for config accounts.
	configAccountLamports = 1_642_560
)

type transactionRecord struct {
	slot      uint64
	blockTime solana.UnixTimeSeconds
	err       any
	logs      []string
	fee       uint64
}

// Ledger serves whirlpool.RPCClient. The store it is given must not be written by anything
// else while the ledger is in use.
type Ledger struct {
	log       *slog.Logger
	programID solana.PublicKey
	store     registry.Store
	clock     clockwork.Clock

	mu           sync.Mutex
	slot         uint64
	blockhashes  map[solana.Hash]uint64
	transactions map[solana.Signature]*transactionRecord
}

type Option func(*Ledger)

func WithStore(store registry.Store) Option {
	return func(l *Ledger) {
		l.store = store
	}
}

func WithClock(clock clockwork.Clock) Option {
	return func(l *Ledger) {
		l.clock = clock
	}
}

func New(log *slog.Logger, programID solana.PublicKey, opts ...Option) *Ledger {
	l := &Ledger{
		log:          log,
		programID:    programID,
		store:        registry.NewMemoryStore(),
		clock:        clockwork.NewRealClock(),
		slot:         1,
		blockhashes:  make(map[solana.Hash]uint64),
		transactions: make(map[solana.Signature]*transactionRecord),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Ledger) ProgramID() solana.PublicKey {
	return l.programID
}

// Registry returns a registry reading and writing the ledger's store directly.
func (l *Ledger) Registry() *registry.Registry {
	return registry.New(l.log, l.store, l.programID)
}

func (l *Ledger) GetLatestBlockhash(ctx context.Context, _ solanarpc.CommitmentType) (*solanarpc.GetLatestBlockhashResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	hash := solana.Hash(solana.NewWallet().PublicKey())
	l.blockhashes[hash] = l.slot
	return &solanarpc.GetLatestBlockhashResult{
		RPCContext: solanarpc.RPCContext{Context: solanarpc.Context{Slot: l.slot}},
		Value: &solanarpc.LatestBlockhashResult{
			Blockhash:            hash,
			LastValidBlockHeight: l.slot + blockhashValidity,
		},
	}, nil
}

// SendTransactionWithOpts verifies and executes a transaction. With preflight, a failing
// transaction is rejected with the simulation error and leaves no trace. Without it, the
// failure is recorded in the transaction metadata. Either way the state is only changed if
// every instruction succeeds.
func (l *Ledger) SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts solanarpc.TransactionOpts) (solana.Signature, error) {
	msg, err := tx.Message.MarshalBinary()
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to encode transaction message: %w", err)
	}
	if !verifySignatures(tx, msg) {
		metrics.LedgerTransactionsTotal.WithLabelValues("rejected").Inc()
		l.log.Debug("--> Rejected transaction with invalid signatures")
		return solana.Signature{}, signatureFailure()
	}
	sig := tx.Signatures[0]

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.transactions[sig]; ok {
		return sig, nil
	}
	issued, ok := l.blockhashes[tx.Message.RecentBlockhash]
	if !ok || l.slot > issued+blockhashValidity {
		metrics.LedgerTransactionsTotal.WithLabelValues("rejected").Inc()
		return solana.Signature{}, blockhashNotFound()
	}

	staged := newOverlay(l.store)

	var (
		logs    []string
		failure *instructionFailure
	)
	for i, ci := range tx.Message.Instructions {
		program, err := tx.Message.Program(ci.ProgramIDIndex)
		if err != nil {
			return solana.Signature{}, fmt.Errorf("failed to resolve program of instruction %d: %w", i, err)
		}
		if !program.Equals(l.programID) {
			failure = builtinFailure("IncorrectProgramId", fmt.Sprintf("program %s is not deployed", program))
			failure.index = i
			logs = append(logs, fmt.Sprintf("Program %s invoke [1]", program), fmt.Sprintf("Program %s failed: %s", program, failure))
			break
		}

		inv := &invocation{index: i, tx: tx, message: msg, accounts: ci.Accounts, data: ci.Data}
		reg := registry.New(l.log, staged, l.programID,
			registry.WithAccessGuard(registry.NewAccessGuardWithSignatureCheck(l.transactionSignatureCheck(inv))))
		failure, err = l.execute(ctx, reg, inv)
		logs = append(logs, inv.logs...)
		if err != nil {
			metrics.LedgerTransactionsTotal.WithLabelValues("error").Inc()
			return solana.Signature{}, fmt.Errorf("failed to execute instruction %d: %w", i, err)
		}
		if failure != nil {
			break
		}
	}

	if failure != nil && !opts.SkipPreflight {
		metrics.LedgerTransactionsTotal.WithLabelValues("rejected").Inc()
		l.log.Debug("--> Transaction failed simulation", "sig", sig, "error", failure)
		return solana.Signature{}, failure.rpcError(logs)
	}

	record := &transactionRecord{
		slot:      l.slot,
		blockTime: solana.UnixTimeSeconds(l.clock.Now().Unix()),
		logs:      logs,
		fee:       lamportsPerSignature * uint64(len(tx.Signatures)),
	}
	if failure != nil {
		record.err = failure.txErr()
		metrics.LedgerTransactionsTotal.WithLabelValues("failed").Inc()
		l.log.Debug("--> Transaction failed", "sig", sig, "error", failure)
	} else {
		if err := staged.commit(ctx); err != nil {
			metrics.LedgerTransactionsTotal.WithLabelValues("error").Inc()
			return solana.Signature{}, err
		}
		metrics.LedgerTransactionsTotal.WithLabelValues("success").Inc()
		l.log.Debug("--> Transaction executed", "sig", sig, "slot", l.slot)
	}
	l.transactions[sig] = record
	l.slot++
	return sig, nil
}

func verifySignatures(tx *solana.Transaction, msg []byte) bool {
	required := int(tx.Message.Header.NumRequiredSignatures)
	if required == 0 || len(tx.Signatures) != required || len(tx.Message.AccountKeys) < required {
		return false
	}
	for i := range required {
		if !tx.Signatures[i].Verify(tx.Message.AccountKeys[i], msg) {
			return false
		}
	}
	return true
}

func (l *Ledger) GetSignatureStatuses(ctx context.Context, _ bool, sigs ...solana.Signature) (*solanarpc.GetSignatureStatusesResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := &solanarpc.GetSignatureStatusesResult{
		RPCContext: solanarpc.RPCContext{Context: solanarpc.Context{Slot: l.slot}},
		Value:      make([]*solanarpc.SignatureStatusesResult, len(sigs)),
	}
	for i, sig := range sigs {
		record, ok := l.transactions[sig]
		if !ok {
			continue
		}
		out.Value[i] = &solanarpc.SignatureStatusesResult{
			Slot:               record.slot,
			Err:                record.err,
			ConfirmationStatus: solanarpc.ConfirmationStatusFinalized,
		}
	}
	return out, nil
}

func (l *Ledger) GetTransaction(ctx context.Context, sig solana.Signature, _ *solanarpc.GetTransactionOpts) (*solanarpc.GetTransactionResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	record, ok := l.transactions[sig]
	if !ok {
		return nil, solanarpc.ErrNotFound
	}
	blockTime := record.blockTime
	return &solanarpc.GetTransactionResult{
		Slot:      record.slot,
		BlockTime: &blockTime,
		Meta: &solanarpc.TransactionMeta{
			Err:         record.err,
			Fee:         record.fee,
			LogMessages: append([]string(nil), record.logs...),
		},
	}, nil
}

func (l *Ledger) GetAccountInfo(ctx context.Context, account solana.PublicKey) (*solanarpc.GetAccountInfoResult, error) {
	stored, err := l.store.Get(ctx, account)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return nil, solanarpc.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account %s: %w", account, err)
	}

	l.mu.Lock()
	slot := l.slot
	l.mu.Unlock()

	return &solanarpc.GetAccountInfoResult{
		RPCContext: solanarpc.RPCContext{Context: solanarpc.Context{Slot: slot}},
		Value:      toRPCAccount(stored),
	}, nil
}

func (l *Ledger) GetProgramAccountsWithOpts(ctx context.Context, program solana.PublicKey, opts *solanarpc.GetProgramAccountsOpts) (solanarpc.GetProgramAccountsResult, error) {
	accounts, err := l.store.List(ctx, program)
	if err != nil {
		return nil, fmt.Errorf("failed to list program accounts: %w", err)
	}

	out := make(solanarpc.GetProgramAccountsResult, 0, len(accounts))
	for i := range accounts {
		if opts != nil && !matchesFilters(accounts[i].Data, opts.Filters) {
			continue
		}
		out = append(out, &solanarpc.KeyedAccount{
			Pubkey:  accounts[i].Address,
			Account: toRPCAccount(&accounts[i]),
		})
	}
	return out, nil
}

func matchesFilters(data []byte, filters []solanarpc.RPCFilter) bool {
	for _, filter := range filters {
		if filter.DataSize != 0 && uint64(len(data)) != filter.DataSize {
			return false
		}
		if filter.Memcmp != nil && !matchesMemcmp(data, filter.Memcmp.Offset, filter.Memcmp.Bytes) {
			return false
		}
	}
	return true
}

func toRPCAccount(account *registry.Account) *solanarpc.Account {
	return &solanarpc.Account{
		Lamports: configAccountLamports,
		Owner:    account.Owner,
		Data:     solanarpc.DataBytesOrJSONFromBytes(account.Data),
		Space:    uint64(len(account.Data)),
	}
}
