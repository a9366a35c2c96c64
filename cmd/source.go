package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shouni/go-liminal-kit/internal/config"
	"github.com/shouni/go-liminal-kit/pkg/questionnaire"
)

// addSourceFlags はキャラクターマップの取得方法に関するフラグを登録するのだ。
func addSourceFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringSliceVar(&opts.Ideologies, "ideology", nil, "カタログから選ぶ思想名なのだ（例: Liberalism）。")
	f.StringSliceVar(&opts.Answers, "answers", nil, "5問の質問票への回答なのだ（例: A,B,C,A,B）。")
	f.BoolVar(&opts.UseExisting, "use-existing", false, "保存済みのキャラクターマップを再利用するのだ。")
	f.BoolVar(&opts.Interactive, "interactive", false, "保存済みのマップがあっても質問に答え直すのだ。")
	f.BoolVar(&opts.Questions, "questions", false, "対話モードで思想カタログではなく5問の質問票に答えるのだ。")
	f.StringVar(&opts.CharacterMapFile, "character-map", config.DefaultCharacterMapFile, "キャラクターマップの保存先なのだ。")
	f.IntVar(&opts.PhilosopherCount, "philosophers", 0, "選定する思想家の人数なのだ。")
}

// buildSource はフラグの組み合わせからキャラクターマップの取得元を決めるのだ。
// 新しく作ったマップは保存して、次回 --use-existing で使えるようにするのだ。
func buildSource() (questionnaire.Source, error) {
	store := questionnaire.NewStore(opts.CharacterMapFile)

	if opts.UseExisting {
		if !store.Exists() {
			return nil, fmt.Errorf("保存済みのキャラクターマップが見つからないのだ: %s", store.Path())
		}
		return questionnaire.StoreSource{Store: store}, nil
	}

	if len(opts.Ideologies) > 0 {
		catalog, err := questionnaire.DefaultCatalog()
		if err != nil {
			return nil, err
		}
		return questionnaire.PersistingSource{
			Source: questionnaire.CatalogSource{Catalog: catalog, Names: opts.Ideologies},
			Store:  store,
		}, nil
	}

	if len(opts.Answers) > 0 {
		return questionnaire.PersistingSource{
			Source: questionnaire.QuestionSource{Questions: questionnaire.DefaultQuestions, Answers: opts.Answers},
			Store:  store,
		}, nil
	}

	// フラグ指定がなく保存済みのマップがあれば、それを使うのだ
	if !opts.Interactive && store.Exists() {
		return questionnaire.StoreSource{Store: store}, nil
	}

	interactive := questionnaire.InteractiveSource{In: os.Stdin, Out: os.Stdout}
	if opts.Questions {
		interactive.Questions = questionnaire.DefaultQuestions
	} else {
		catalog, err := questionnaire.DefaultCatalog()
		if err != nil {
			return nil, err
		}
		interactive.Catalog = catalog
	}
	return questionnaire.PersistingSource{Source: interactive, Store: store}, nil
}
