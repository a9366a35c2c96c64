package questionnaire

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shouni/go-liminal-kit/pkg/domain"
)

// Source はキャラクターマップを用意する手段です。
// 対話式・フォーム・保存済みファイルなど、フロントエンドごとに実装を差し替えます。
type Source interface {
	CharacterMap(ctx context.Context) (domain.CharacterMap, error)
}

// StoreSource は保存済みのマップを再利用します。
type StoreSource struct {
	Store *Store
}

func (s StoreSource) CharacterMap(ctx context.Context) (domain.CharacterMap, error) {
	cmap, err := s.Store.Load(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("Character map loaded", "path", s.Store.Path(), "beliefs", len(cmap))
	return cmap, nil
}

// CatalogSource はカタログから名前で選んだ思想をマップにします。
type CatalogSource struct {
	Catalog *Catalog
	Names   []string
}

func (s CatalogSource) CharacterMap(context.Context) (domain.CharacterMap, error) {
	return s.Catalog.Select(s.Names...)
}

// QuestionSource は設問への回答（"A" など）からマップを作ります。
type QuestionSource struct {
	Questions []Question
	Answers   []string
}

func (s QuestionSource) CharacterMap(context.Context) (domain.CharacterMap, error) {
	return AnswerAll(s.Questions, s.Answers)
}

// PersistingSource は新しく作ったマップを Store に上書き保存します。
type PersistingSource struct {
	Source Source
	Store  *Store
}

func (s PersistingSource) CharacterMap(ctx context.Context) (domain.CharacterMap, error) {
	cmap, err := s.Source.CharacterMap(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.Store.Save(ctx, cmap); err != nil {
		return nil, err
	}
	slog.Info("Character map saved", "path", s.Store.Path())
	return cmap, nil
}

// InteractiveSource は入出力ストリームで利用者に問いかけます。
// Questions が空ならカタログから思想を1つ選ばせ、そうでなければ設問に順に答えさせます。
type InteractiveSource struct {
	In        io.Reader
	Out       io.Writer
	Catalog   *Catalog
	Questions []Question
}

// ErrNoInput は回答の途中で入力が終わったことを表します。
var ErrNoInput = errors.New("input ended before the questionnaire was completed")

func (s InteractiveSource) CharacterMap(ctx context.Context) (domain.CharacterMap, error) {
	scanner := bufio.NewScanner(s.In)
	if len(s.Questions) > 0 {
		return s.askQuestions(ctx, scanner)
	}
	if s.Catalog == nil {
		return nil, errors.New("catalog is required")
	}
	return s.askIdeology(ctx, scanner)
}

func (s InteractiveSource) askIdeology(ctx context.Context, scanner *bufio.Scanner) (domain.CharacterMap, error) {
	names := s.Catalog.Names()
	for i, name := range names {
		fmt.Fprintf(s.Out, "%d. %s\n", i+1, name)
	}
	choices := make([]string, len(names))
	for i := range names {
		choices[i] = strconv.Itoa(i + 1)
	}
	prompt := fmt.Sprintf("Your ideology (%s):\nHit 0 for help.\n", strings.Join(choices, "/"))

	for {
		line, err := s.readLine(ctx, scanner, prompt)
		if err != nil {
			return nil, err
		}
		n, convErr := strconv.Atoi(line)
		switch {
		case convErr == nil && n == 0:
			for i, name := range names {
				b, _ := s.Catalog.Lookup(name)
				fmt.Fprintf(s.Out, "%d. %s - %s\n", i+1, name, b.Description)
			}
		case convErr == nil:
			if _, b, ok := s.Catalog.At(n); ok {
				return domain.CharacterMap{b}, nil
			}
			fallthrough
		default:
			fmt.Fprintf(s.Out, "Invalid choice. Please select %s. Hit 0 for help.\n", strings.Join(choices, ", "))
		}
	}
}

func (s InteractiveSource) askQuestions(ctx context.Context, scanner *bufio.Scanner) (domain.CharacterMap, error) {
	fmt.Fprintln(s.Out, "Please answer the following questions:")
	cmap := make(domain.CharacterMap, 0, len(s.Questions))
	for _, q := range s.Questions {
		var sb strings.Builder
		fmt.Fprintf(&sb, "\n%s\n", q.Text)
		for _, o := range q.Options {
			fmt.Fprintf(&sb, "  %s. %s\n", o.Key, o.Text)
		}
		fmt.Fprintf(&sb, "Your answer (%s): ", q.Keys())
		prompt := sb.String()

		for {
			line, err := s.readLine(ctx, scanner, prompt)
			if err != nil {
				return nil, err
			}
			b, err := q.Answer(line)
			if err == nil {
				cmap = append(cmap, b)
				break
			}
			fmt.Fprintf(s.Out, "Invalid choice. Please select %s.\n", q.Keys())
		}
	}
	return cmap, nil
}

func (s InteractiveSource) readLine(ctx context.Context, scanner *bufio.Scanner, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprint(s.Out, prompt)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("入力の読み取りに失敗しました: %w", err)
		}
		return "", ErrNoInput
	}
	return strings.TrimSpace(scanner.Text()), nil
}
