package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/patrimonio/internal/apimodel"
)

// today is a test seam.
var today = func() time.Time { return time.Now() }

func (a *App) entriesCmd() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:     "entries",
		Aliases: []string{"entry"},
		Short:   "Manage profits and expenses",
	}
	cmd.PersistentFlags().StringVarP(&kind, "kind", "k", "expense", "entry kind: profit or expense")

	var categoryID string
	list := &cobra.Command{
		Use:     "list",
		Short:   "List entries, newest first",
		Args:    cobra.NoArgs,
		PreRunE: a.requireLogin,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				es  []apimodel.Entry
				err error
			)
			if categoryID != "" {
				es, err = a.client.ListEntriesByCategory(cmd.Context(), kind, categoryID)
			} else {
				es, err = a.client.ListEntries(cmd.Context(), kind)
			}
			if err != nil {
				return explain(err)
			}
			if len(es) == 0 {
				yellow.Fprintf(a.out, "No %s entries\n", kind)
				return nil
			}

			rows := [][]string{{"ID", "DATE", "CATEGORY", "DESCRIPTION", "AMOUNT"}}
			var total apimodel.Money
			for _, e := range es {
				rows = append(rows, []string{e.ID, e.Date.String(), e.CategoryName, e.Description, e.Amount.String()})
				total += e.Amount
			}
			if err := a.printTable(rows); err != nil {
				return err
			}
			a.printMoney("Total", total)
			return nil
		},
	}
	list.Flags().StringVar(&categoryID, "category", "", "only entries of this category id")

	var (
		amount      string
		date        string
		description string
	)
	add := &cobra.Command{
		Use:     "add",
		Short:   "Record a profit or an expense",
		Args:    cobra.NoArgs,
		PreRunE: a.requireLogin,
		RunE: func(cmd *cobra.Command, args []string) error {
			cents, err := apimodel.ParseDecimalToCents(amount)
			if err != nil {
				return fmt.Errorf("amount %q: %w", amount, err)
			}

			d := apimodel.NewDate(today())
			if date != "" {
				if d, err = apimodel.ParseDate(date); err != nil {
					return fmt.Errorf("date %q: want YYYY-MM-DD", date)
				}
			}

			e, err := a.client.CreateEntry(cmd.Context(), kind, apimodel.EntryRequest{
				Description: description,
				Amount:      apimodel.Money(cents),
				Date:        d,
				CategoryID:  categoryID,
			})
			if err != nil {
				return explain(err)
			}
			green.Fprintf(a.out, "Recorded %s %s on %s (%s)\n", kind, e.Amount, e.Date, e.ID)
			return nil
		},
	}
	add.Flags().StringVarP(&amount, "amount", "a", "", "amount, e.g. 12.50")
	add.Flags().StringVar(&date, "date", "", "date as YYYY-MM-DD (default today)")
	add.Flags().StringVarP(&description, "description", "d", "", "description")
	add.Flags().StringVar(&categoryID, "category", "", "category id")
	_ = add.MarkFlagRequired("amount")
	_ = add.MarkFlagRequired("description")
	_ = add.MarkFlagRequired("category")

	del := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete an entry",
		Args:    cobra.ExactArgs(1),
		PreRunE: a.requireLogin,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.DeleteEntry(cmd.Context(), kind, args[0]); err != nil {
				return explain(err)
			}
			fmt.Fprintf(a.out, "Deleted %s %s\n", kind, args[0])
			return nil
		},
	}

	cmd.AddCommand(list, add, del)
	return cmd
}
