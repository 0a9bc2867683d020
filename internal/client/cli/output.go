package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/pterm/pterm"

	"github.com/dmitrijs2005/patrimonio/internal/apimodel"
)

var (
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	cyan   = color.New(color.FgCyan)
	yellow = color.New(color.FgYellow)
)

// printTable renders rows with the first row as header.
func (a *App) printTable(rows [][]string) error {
	s, err := pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData(rows)).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, s)
	return err
}

// printMoney prints label and amount, negative amounts in red.
func (a *App) printMoney(label string, m apimodel.Money) {
	c := green
	if m < 0 {
		c = red
	}
	fmt.Fprintf(a.out, "%-16s", label)
	c.Fprintln(a.out, m.String())
}
