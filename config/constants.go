package config

const (
	// Mainnet constants.
	MainnetLedgerPublicRPCURL = "https://api.mainnet-beta.solana.com"
	MainnetWhirlpoolProgramID = "whirLbMiicVdio4qvUfM5KAg6Ct8VwpYzGff3uctyCc"
	MainnetWhirlpoolsConfig   = "2LecshUwdy9xi7meFgHtFJQNSKk4KdTrcpvaB56dP2NQ"

	// Devnet constants.
	DevnetLedgerPublicRPCURL = "https://api.devnet.solana.com"
	DevnetWhirlpoolProgramID = "whirLbMiicVdio4qvUfM5KAg6Ct8VwpYzGff3uctyCc"
	DevnetWhirlpoolsConfig   = "FcrweFY1G9HJAHG5inkGB6pKg1HZ6x9UC2WioAfWrGkR"

	// Localnet constants, for a solana-test-validator with the program deployed at genesis.
	LocalnetLedgerPublicRPCURL = "http://127.0.0.1:8899"
	LocalnetWhirlpoolProgramID = "whirLbMiicVdio4qvUfM5KAg6Ct8VwpYzGff3uctyCc"
)
