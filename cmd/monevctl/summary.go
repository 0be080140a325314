package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"monev/internal/core"
	"monev/internal/dashboard"
)

// shortLabel trims "AKSI 3: Rembug Stunting" to "AKSI 3".
func shortLabel(label string) string {
	if i := strings.Index(label, ":"); i > 0 {
		return label[:i]
	}
	return label
}

// writeActionSummary prints one row per region and one column per action label.
func writeActionSummary(out io.Writer, chart dashboard.ChartData) error {
	if len(chart.Labels) == 0 {
		_, err := fmt.Fprintln(out, "Belum ada data aksi konvergensi.")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight|tabwriter.Debug)
	header := []string{"Wilayah"}
	for _, ds := range chart.Datasets {
		header = append(header, shortLabel(ds.Label))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t")+"\t")

	for i, region := range chart.Labels {
		row := []string{region}
		for _, ds := range chart.Datasets {
			row = append(row, core.FormatScore(ds.Data[i]))
		}
		fmt.Fprintln(tw, strings.Join(row, "\t")+"\t")
	}
	return tw.Flush()
}

func newSummaryCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print the convergence action scores per region",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			result, err := a.openBackend(ctx)
			if err != nil {
				return err
			}
			defer result.Cleanup()

			actions, err := result.Service.ListActions(ctx)
			if err != nil {
				return err
			}
			return writeActionSummary(cmd.OutOrStdout(), dashboard.BuildActionChart(actions))
		},
	}
}
