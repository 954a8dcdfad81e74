package whirlpool

// InstructionDiscriminator is the 8-byte Anchor sighash prefix of an instruction.
type InstructionDiscriminator [8]byte

// Instruction discriminators, sha256("global:<instruction_name>")[:8].
var (
	InitializeConfigDiscriminator                 = InstructionDiscriminator{208, 127, 21, 1, 194, 190, 196, 70}
	SetFeeAuthorityDiscriminator                  = InstructionDiscriminator{31, 1, 50, 87, 237, 101, 97, 132}
	SetCollectProtocolFeesAuthorityDiscriminator  = InstructionDiscriminator{34, 150, 93, 244, 139, 225, 233, 67}
	SetRewardEmissionsSuperAuthorityDiscriminator = InstructionDiscriminator{207, 5, 200, 209, 122, 56, 82, 183}
	SetDefaultProtocolFeeRateDiscriminator        = InstructionDiscriminator{107, 205, 249, 226, 151, 35, 86, 0}
)

// WhirlpoolsConfigDiscriminator is sha256("account:WhirlpoolsConfig")[:8].
var WhirlpoolsConfigDiscriminator = [8]byte{157, 20, 49, 224, 217, 87, 193, 254}

// Whirlpool program IDs
const (
	WHIRLPOOL_PROGRAM_ID_MAINNET = "whirLbMiicVdio4qvUfM5KAg6Ct8VwpYzGff3uctyCc"
	WHIRLPOOL_PROGRAM_ID_DEVNET  = "whirLbMiicVdio4qvUfM5KAg6Ct8VwpYzGff3uctyCc"
)

const (
	// WhirlpoolsConfigSize is the on-chain size of a WhirlpoolsConfig account: discriminator,
	// three authorities, the default protocol fee rate and two bytes of padding.
	WhirlpoolsConfigSize = 8 + 3*32 + 4

	// MaxProtocolFeeRate is the largest allowed protocol fee rate, in basis points of the swap fee.
	MaxProtocolFeeRate uint16 = 2_500

	// ProtocolFeeRateDenominator is the denominator of protocol fee rates (basis points).
	ProtocolFeeRateDenominator = 10_000
)

// Error codes returned by the Whirlpool program, either from the Anchor framework or from the
// program's own error enum.
const (
	// InstructionErrorConstraintAddress is returned when an account does not match the address
	// stored in the config, e.g. a fee_authority that is not the current fee authority (0x7dc).
	InstructionErrorConstraintAddress = 2012

	// InstructionErrorAccountDiscriminatorMismatch is returned when the config account holds
	// data of another account type.
	InstructionErrorAccountDiscriminatorMismatch = 3002

	// InstructionErrorAccountNotSigner is returned when a required signer did not sign.
	InstructionErrorAccountNotSigner = 3010

	// InstructionErrorAccountNotInitialized is returned when the config account does not exist.
	InstructionErrorAccountNotInitialized = 3012

	// InstructionErrorProtocolFeeRateMaxExceeded is returned when a protocol fee rate is above
	// MaxProtocolFeeRate.
	InstructionErrorProtocolFeeRateMaxExceeded = 6029

	// InstructionErrorAccountAlreadyInUse is the system program error for creating an account
	// at an address that is already in use.
	InstructionErrorAccountAlreadyInUse = 0
)

// RPCErrorCodeSignatureVerificationFailure is the JSON-RPC error code returned when a
// transaction is submitted with a missing or invalid signature.
const RPCErrorCodeSignatureVerificationFailure = -32003
