package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/patrimonio/internal/apimodel"
	"github.com/dmitrijs2005/patrimonio/internal/buildinfo"
	"github.com/dmitrijs2005/patrimonio/internal/netx"
)

func (a *App) summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "summary",
		Short:   "Show totals, net worth and per-category breakdowns",
		Args:    cobra.NoArgs,
		PreRunE: a.requireLogin,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.client.Summary(cmd.Context())
			if err != nil {
				return explain(err)
			}

			a.printMoney("Total profits", s.TotalProfits)
			a.printMoney("Total expenses", -s.TotalExpenses)
			a.printMoney("Net worth", s.NetWorth)

			for _, section := range []struct {
				title  string
				totals []apimodel.CategoryTotal
			}{
				{"Profits by category", s.ProfitsByCategory},
				{"Expenses by category", s.ExpensesByCategory},
			} {
				if len(section.totals) == 0 {
					continue
				}
				fmt.Fprintln(a.out)
				cyan.Fprintln(a.out, section.title)
				rows := [][]string{{"CATEGORY", "TOTAL"}}
				for _, t := range section.totals {
					rows = append(rows, []string{t.CategoryName, t.TotalAmount.String()})
				}
				if err := a.printTable(rows); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// download is a test seam for netx.DownloadFromPresignedURL.
var download = netx.DownloadFromPresignedURL

func (a *App) exportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:     "export",
		Short:   "Export all entries as CSV",
		Args:    cobra.NoArgs,
		PreRunE: a.requireLogin,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.client.Export(cmd.Context())
			if err != nil {
				return explain(err)
			}
			fmt.Fprintf(a.out, "Export stored as %s\n", res.Key)

			if output == "" {
				cyan.Fprintln(a.out, res.URL)
				return nil
			}
			n, err := a.saveExport(cmd.Context(), res.URL, output)
			if err != nil {
				return err
			}
			green.Fprintf(a.out, "Saved %d bytes to %s\n", n, output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "download the CSV to this file instead of printing the link")
	return cmd
}

func (a *App) saveExport(ctx context.Context, url, path string) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	n, err := download(ctx, url, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return 0, fmt.Errorf("download export: %w", err)
	}
	return n, nil
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			buildinfo.PrintBuildData(a.out)
		},
	}
}
