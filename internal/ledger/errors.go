package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/malbeclabs/whirlpools/internal/registry"
	"github.com/malbeclabs/whirlpools/smartcontract/sdk/go/whirlpool"
)

const (
	rpcErrorCodeSimulationFailed = -32002

	// instructionErrorFallbackNotFound is returned for data that matches no instruction.
	instructionErrorFallbackNotFound = 101
)

// instructionFailure is why an instruction failed, shaped the way the cluster reports it.
type instructionFailure struct {
	index int

	// custom is the program error code; builtin names a runtime error when custom is unset.
	custom  *int
	builtin string
	message string
}

func customFailure(code int, message string) *instructionFailure {
	return &instructionFailure{custom: &code, message: message}
}

func builtinFailure(name, message string) *instructionFailure {
	return &instructionFailure{builtin: name, message: message}
}

// txErr returns the failure as the transaction error value found in RPC error data and in
// transaction metadata.
func (f *instructionFailure) txErr() map[string]any {
	var detail any = f.builtin
	if f.custom != nil {
		detail = map[string]any{"Custom": json.Number(strconv.Itoa(*f.custom))}
	}
	return map[string]any{
		"InstructionError": []any{json.Number(strconv.Itoa(f.index)), detail},
	}
}

func (f *instructionFailure) String() string {
	if f.custom != nil {
		return fmt.Sprintf("custom program error: 0x%x", *f.custom)
	}
	return f.builtin
}

// rpcError is the error a send with preflight returns for the failure.
func (f *instructionFailure) rpcError(logs []string) *jsonrpc.RPCError {
	anyLogs := make([]any, 0, len(logs))
	for _, l := range logs {
		anyLogs = append(anyLogs, l)
	}
	return &jsonrpc.RPCError{
		Code:    rpcErrorCodeSimulationFailed,
		Message: fmt.Sprintf("Transaction simulation failed: Error processing Instruction %d: %s", f.index, f),
		Data: map[string]any{
			"err":  f.txErr(),
			"logs": anyLogs,
		},
	}
}

func signatureFailure() *jsonrpc.RPCError {
	return &jsonrpc.RPCError{
		Code:    whirlpool.RPCErrorCodeSignatureVerificationFailure,
		Message: "Transaction signature verification failure",
	}
}

func blockhashNotFound() *jsonrpc.RPCError {
	return &jsonrpc.RPCError{
		Code:    rpcErrorCodeSimulationFailed,
		Message: "Transaction simulation failed: Blockhash not found",
		Data:    map[string]any{"err": "BlockhashNotFound", "logs": []any{}},
	}
}

// failureForRegistryError maps a registry rejection to the error the program reports.
func failureForRegistryError(err error) *instructionFailure {
	var programErr *registry.ProgramError
	if errors.As(err, &programErr) && programErr.Code != registry.NoCustomCode {
		return customFailure(programErr.Code, programErr.Detail)
	}
	switch {
	case errors.Is(err, registry.ErrNotFound):
		return customFailure(whirlpool.InstructionErrorAccountNotInitialized, err.Error())
	case errors.Is(err, registry.ErrSignatureVerificationFailed):
		return builtinFailure("MissingRequiredSignature", err.Error())
	case errors.Is(err, registry.ErrInvalidArgument):
		return builtinFailure("InvalidArgument", err.Error())
	case errors.Is(err, registry.ErrStaleState):
		return builtinFailure("AccountBorrowFailed", err.Error())
	default:
		return nil
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, registry.ErrNotFound)
}
