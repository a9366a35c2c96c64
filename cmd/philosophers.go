package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shouni/go-liminal-kit/pkg/workflow"
)

// philosophersCmd は思想家の選定だけを行い、結果を表示するのだ。
var philosophersCmd = &cobra.Command{
	Use:   "philosophers",
	Short: "キャラクターマップと対照的な思想家を選ぶだけなのだ。",
	RunE:  philosophersCommand,
}

func init() {
	addSourceFlags(philosophersCmd)
}

func philosophersCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	_, cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := requireAPIKey(cfg); err != nil {
		return err
	}

	source, err := buildSource()
	if err != nil {
		return err
	}
	cmap, err := source.CharacterMap(ctx)
	if err != nil {
		return fmt.Errorf("キャラクターマップの取得に失敗したのだ: %w", err)
	}

	mgr, err := workflow.New(ctx, workflow.ManagerArgs{Config: cfg})
	if err != nil {
		return err
	}
	selector, err := mgr.BuildPhilosopherRunner()
	if err != nil {
		return err
	}
	set, err := selector.Execute(ctx, cmap)
	if err != nil {
		return fmt.Errorf("思想家の選定に失敗したのだ: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), set.String())
	return nil
}
