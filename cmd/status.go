package cmd

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// statusCmd shows what a launch would do, without doing it.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show toolchain, env file and launch mode checks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLauncher()
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetStyle(table.StyleLight)
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Check", "Value", "", "Detail"})
		for _, c := range l.Status() {
			mark := "✓"
			if !c.OK {
				mark = "✗"
			}
			t.AppendRow(table.Row{c.Name, c.Value, mark, c.Detail})
		}
		t.Render()
		return nil
	},
}
