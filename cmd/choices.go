package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shouni/go-liminal-kit/pkg/questionnaire"
)

// choicesCmd は選べる思想の一覧を表示するのだ。
var choicesCmd = &cobra.Command{
	Use:   "choices",
	Short: "--ideology で指定できる思想の一覧なのだ。",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := questionnaire.DefaultCatalog()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for i, name := range catalog.Names() {
			belief, _ := catalog.Lookup(name)
			fmt.Fprintf(out, "%d. %s\n   %s\n", i+1, name, belief.Description)
		}
		return nil
	},
}
