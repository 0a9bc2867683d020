package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/patrimonio/internal/apimodel"
)

func (a *App) categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category", "cat"},
		Short:   "Manage categories",
	}

	list := &cobra.Command{
		Use:     "list",
		Short:   "List categories",
		Args:    cobra.NoArgs,
		PreRunE: a.requireLogin,
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, err := a.client.ListCategories(cmd.Context())
			if err != nil {
				return explain(err)
			}
			if len(cs) == 0 {
				yellow.Fprintln(a.out, "No categories yet")
				return nil
			}
			rows := [][]string{{"ID", "NAME", "TYPE"}}
			for _, c := range cs {
				rows = append(rows, []string{c.ID, c.Name, c.Type})
			}
			return a.printTable(rows)
		},
	}

	var typ string
	add := &cobra.Command{
		Use:     "add <name>",
		Short:   "Create a category",
		Args:    cobra.ExactArgs(1),
		PreRunE: a.requireLogin,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client.CreateCategory(cmd.Context(), apimodel.CategoryRequest{
				Name: args[0],
				Type: strings.ToUpper(typ),
			})
			if err != nil {
				return explain(err)
			}
			green.Fprintf(a.out, "Created %s category %q (%s)\n", c.Type, c.Name, c.ID)
			return nil
		},
	}
	add.Flags().StringVarP(&typ, "type", "t", "EXPENSE", "category type: PROFIT or EXPENSE")

	del := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a category together with its entries",
		Args:    cobra.ExactArgs(1),
		PreRunE: a.requireLogin,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.DeleteCategory(cmd.Context(), args[0]); err != nil {
				return explain(err)
			}
			fmt.Fprintf(a.out, "Deleted category %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, add, del)
	return cmd
}
