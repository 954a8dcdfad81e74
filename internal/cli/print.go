package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/malbeclabs/whirlpools/smartcontract/sdk/go/whirlpool"
	"github.com/olekukonko/tablewriter"
)

// configRow is one config to print. Version is zero when the source does not track it.
type configRow struct {
	Address solana.PublicKey
	Version uint64
	Config  whirlpool.WhirlpoolsConfig
}

func printConfigs(w io.Writer, rows []configRow) {
	withVersion := false
	for _, row := range rows {
		if row.Version != 0 {
			withVersion = true
			break
		}
	}

	header := []string{
		"Address",
		"Fee\nAuthority",
		"Collect Protocol Fees\nAuthority",
		"Reward Emissions Super\nAuthority",
		"Default Protocol\nFee Rate",
	}
	if withVersion {
		header = append(header, "Version")
	}

	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_CENTER)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(true)
	table.SetRowLine(true)
	table.SetHeader(header)

	for _, row := range rows {
		line := []string{
			row.Address.String(),
			row.Config.FeeAuthority.String(),
			row.Config.CollectProtocolFeesAuthority.String(),
			row.Config.RewardEmissionsSuperAuthority.String(),
			formatFeeRate(row.Config.DefaultProtocolFeeRate),
		}
		if withVersion {
			line = append(line, strconv.FormatUint(row.Version, 10))
		}
		table.Append(line)
	}
	table.Render()
}

// formatFeeRate renders a protocol fee rate in basis points as a share of the swap fee.
func formatFeeRate(rate uint16) string {
	return fmt.Sprintf("%d (%.2f%%)", rate, float64(rate)/whirlpool.ProtocolFeeRateDenominator*100)
}
