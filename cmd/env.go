package cmd

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/graftml/graft/envconfig"
)

func EnvHandler(cmd *cobra.Command, args []string) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader([]string{"Variable", "Value", "Description"})
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("  ")

	for _, v := range envconfig.Describe() {
		table.Append([]string{v.Name, fmt.Sprintf("%v", v.Value), v.Description})
	}

	table.Render()
	return nil
}
