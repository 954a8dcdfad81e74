package whirlpool

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
)

var (
	ErrAccountNotFound             = errors.New("account not found")
	ErrAccountAlreadyInitialized   = errors.New("account already initialized")
	ErrSignatureVerificationFailed = errors.New("signature verification failed")
	// ErrInvalidAuthority is returned when the signing authority is not the authority stored in
	// the config. The program surfaces it as an address constraint violation (0x7dc).
	ErrInvalidAuthority           = errors.New("an address constraint was violated")
	ErrInvalidArgument            = errors.New("invalid argument")
	ErrProtocolFeeRateMaxExceeded = errors.New("protocol fee rate exceeds max")
)

// parseRPCError maps a failed send to a program error sentinel, or returns nil when the error
// is not one the program produces.
func parseRPCError(err error) error {
	var rpcErr *jsonrpc.RPCError
	if !errors.As(err, &rpcErr) {
		return nil
	}
	if rpcErr.Code == RPCErrorCodeSignatureVerificationFailure {
		return ErrSignatureVerificationFailed
	}
	data, ok := rpcErr.Data.(map[string]any)
	if !ok {
		return nil
	}
	logs, _ := data["logs"].([]any)
	return parseTransactionError(data["err"], logs)
}

// parseTransactionError maps a transaction error value, as found in RPC error data or in
// GetTransactionResult.Meta.Err, to a program error sentinel.
func parseTransactionError(txErr any, logs []any) error {
	switch v := txErr.(type) {
	case string:
		switch v {
		case "AccountNotFound":
			return ErrAccountNotFound
		case "SignatureFailure":
			return ErrSignatureVerificationFailed
		}
	case map[string]any:
		ie, ok := v["InstructionError"].([]any)
		if !ok || len(ie) != 2 {
			return nil
		}
		switch detail := ie[1].(type) {
		case string:
			switch detail {
			case "InvalidArgument":
				return ErrInvalidArgument
			case "MissingRequiredSignature":
				return ErrSignatureVerificationFailed
			}
		case map[string]any:
			code, ok := customCode(detail["Custom"])
			if !ok {
				return nil
			}
			return errorForCustomCode(code, logs)
		}
	}
	return nil
}

func customCode(v any) (int64, bool) {
	switch code := v.(type) {
	case json.Number:
		i, err := code.Int64()
		if err != nil {
			return 0, false
		}
		return i, true
	case float64:
		return int64(code), true
	case int:
		return int64(code), true
	case uint32:
		return int64(code), true
	default:
		return 0, false
	}
}

func errorForCustomCode(code int64, logs []any) error {
	switch code {
	case InstructionErrorConstraintAddress:
		return ErrInvalidAuthority
	case InstructionErrorAccountNotSigner:
		return ErrSignatureVerificationFailed
	case InstructionErrorAccountNotInitialized, InstructionErrorAccountDiscriminatorMismatch:
		return ErrAccountNotFound
	case InstructionErrorProtocolFeeRateMaxExceeded:
		return ErrProtocolFeeRateMaxExceeded
	case InstructionErrorAccountAlreadyInUse:
		for _, l := range logs {
			msg, _ := l.(string)
			if strings.Contains(strings.ToLower(msg), "already in use") {
				return ErrAccountAlreadyInitialized
			}
		}
	}
	return nil
}

// programError wraps err with the program error sentinel it carries, if any.
func programError(op string, err error) error {
	if sentinel := parseRPCError(err); sentinel != nil {
		return fmt.Errorf("failed to %s: %w: %w", op, sentinel, err)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
