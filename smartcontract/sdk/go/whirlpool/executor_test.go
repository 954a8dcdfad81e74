package whirlpool_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/jonboulle/clockwork"
	"github.com/malbeclabs/whirlpools/smartcontract/sdk/go/whirlpool"
	"github.com/stretchr/testify/require"
)

func TestSDK_Whirlpool_Executor_ExecuteTransaction(t *testing.T) {
	t.Parallel()

	signer := solana.NewWallet().PrivateKey
	programID := solana.NewWallet().PublicKey()

	var sent *solana.Transaction
	mockRPC := newFinalizingRPC(func(tx *solana.Transaction, _ solanarpc.TransactionOpts) error {
		sent = tx
		return nil
	}, nil)

	exec := whirlpool.NewExecutor(log, mockRPC, &signer, programID)

	instruction := solana.NewInstruction(
		programID,
		solana.AccountMetaSlice{},
		[]byte{1, 2, 3},
	)

	sig, res, err := exec.ExecuteTransaction(t.Context(), instruction, &whirlpool.ExecuteTransactionOptions{})
	require.NoError(t, err)
	require.NotNil(t, res)
	require.Equal(t, sent.Signatures[0], sig)
	require.Equal(t, testBlockhash, sent.Message.RecentBlockhash)
}

func TestSDK_Whirlpool_Executor_ExtraSigners(t *testing.T) {
	t.Parallel()

	payer := solana.NewWallet().PrivateKey
	authority := solana.NewWallet().PrivateKey
	programID := solana.NewWallet().PublicKey()

	var sent *solana.Transaction
	mockRPC := newFinalizingRPC(func(tx *solana.Transaction, _ solanarpc.TransactionOpts) error {
		sent = tx
		return nil
	}, nil)

	exec := whirlpool.NewExecutor(log, mockRPC, &payer, programID)
	instruction := solana.NewInstruction(
		programID,
		solana.AccountMetaSlice{solana.Meta(authority.PublicKey()).SIGNER()},
		[]byte{1},
	)

	_, _, err := exec.ExecuteTransaction(t.Context(), instruction, &whirlpool.ExecuteTransactionOptions{
		Signers: []solana.PrivateKey{authority},
	})
	require.NoError(t, err)
	require.Len(t, sent.Signatures, 2)

	msg, err := sent.Message.MarshalBinary()
	require.NoError(t, err)
	require.Equal(t, payer.PublicKey(), sent.Message.AccountKeys[0])
	require.True(t, sent.Signatures[0].Verify(payer.PublicKey(), msg))
	require.Equal(t, authority.PublicKey(), sent.Message.AccountKeys[1])
	require.True(t, sent.Signatures[1].Verify(authority.PublicKey(), msg))
}

func TestSDK_Whirlpool_Executor_MissingRequiredSigner(t *testing.T) {
	t.Parallel()

	payer := solana.NewWallet().PrivateKey
	programID := solana.NewWallet().PublicKey()

	mockRPC := newFinalizingRPC(func(*solana.Transaction, solanarpc.TransactionOpts) error {
		t.Fatal("transaction must not be sent")
		return nil
	}, nil)

	exec := whirlpool.NewExecutor(log, mockRPC, &payer, programID)
	instruction := solana.NewInstruction(
		programID,
		solana.AccountMetaSlice{solana.Meta(solana.NewWallet().PublicKey()).SIGNER()},
		[]byte{1},
	)

	_, _, err := exec.ExecuteTransaction(t.Context(), instruction, nil)
	require.ErrorIs(t, err, whirlpool.ErrSignatureVerificationFailed)
}

func TestSDK_Whirlpool_Executor_MissingPayer(t *testing.T) {
	t.Parallel()

	programID := solana.NewWallet().PublicKey()
	exec := whirlpool.NewExecutor(log, &mockRPCClient{}, nil, programID)

	instruction := solana.NewInstruction(programID, solana.AccountMetaSlice{}, []byte{1})
	_, _, err := exec.ExecuteTransaction(t.Context(), instruction, nil)
	require.ErrorIs(t, err, whirlpool.ErrNoPrivateKey)
}

func TestSDK_Whirlpool_Executor_MissingProgramID(t *testing.T) {
	t.Parallel()

	signer := solana.NewWallet().PrivateKey
	exec := whirlpool.NewExecutor(log, &mockRPCClient{}, &signer, solana.PublicKey{})

	instruction := solana.NewInstruction(solana.NewWallet().PublicKey(), solana.AccountMetaSlice{}, []byte{1})
	_, _, err := exec.ExecuteTransaction(t.Context(), instruction, nil)
	require.ErrorIs(t, err, whirlpool.ErrNoProgramID)
}

func TestSDK_Whirlpool_Executor_SignatureNeverVisible(t *testing.T) {
	t.Parallel()

	signer := solana.NewWallet().PrivateKey
	programID := solana.NewWallet().PublicKey()

	mockRPC := newFinalizingRPC(nil, nil)
	mockRPC.GetSignatureStatusesFunc = func(context.Context, bool, ...solana.Signature) (*solanarpc.GetSignatureStatusesResult, error) {
		return &solanarpc.GetSignatureStatusesResult{Value: []*solanarpc.SignatureStatusesResult{nil}}, nil
	}

	exec := whirlpool.NewExecutor(log, mockRPC, &signer, programID,
		whirlpool.WithWaitForVisibleTimeout(50*time.Millisecond),
		whirlpool.WithPollInterval(5*time.Millisecond),
	)
	instruction := solana.NewInstruction(programID, solana.AccountMetaSlice{}, []byte{1})

	_, _, err := exec.ExecuteTransaction(t.Context(), instruction, &whirlpool.ExecuteTransactionOptions{SkipPreflight: true})
	require.ErrorContains(t, err, "signature not found after wait")
}

func TestSDK_Whirlpool_Executor_WaitsForFinalization(t *testing.T) {
	t.Parallel()

	signer := solana.NewWallet().PrivateKey
	programID := solana.NewWallet().PublicKey()
	clock := clockwork.NewFakeClock()

	// The first two polls see the signature confirmed, later ones see it finalized.
	var polls atomic.Int32
	mockRPC := newFinalizingRPC(nil, nil)
	mockRPC.GetSignatureStatusesFunc = func(_ context.Context, _ bool, _ ...solana.Signature) (*solanarpc.GetSignatureStatusesResult, error) {
		status := solanarpc.ConfirmationStatusConfirmed
		if polls.Add(1) > 2 {
			status = solanarpc.ConfirmationStatusFinalized
		}
		return &solanarpc.GetSignatureStatusesResult{
			Value: []*solanarpc.SignatureStatusesResult{{ConfirmationStatus: status}},
		}, nil
	}

	exec := whirlpool.NewExecutor(log, mockRPC, &signer, programID,
		whirlpool.WithClock(clock),
		whirlpool.WithPollInterval(time.Second),
	)
	instruction := solana.NewInstruction(programID, solana.AccountMetaSlice{}, []byte{1})

	done := make(chan error, 1)
	go func() {
		_, _, err := exec.ExecuteTransaction(t.Context(), instruction, nil)
		done <- err
	}()

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	select {
	case err := <-done:
		t.Fatalf("executor returned before the transaction was finalized: %v", err)
	default:
	}
	clock.Advance(time.Second)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-ctx.Done():
		t.Fatal("timed out waiting for finalization")
	}
	require.Equal(t, int32(3), polls.Load())
}
