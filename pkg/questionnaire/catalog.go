package questionnaire

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shouni/go-liminal-kit/pkg/domain"
)

//go:embed choices.json
var defaultChoices []byte

const choicesKey = "choices"

// Catalog は選択可能な思想（イデオロギー）の一覧です。
type Catalog struct {
	names   []string
	entries map[string]domain.Belief
}

// DefaultCatalog は組み込みのカタログを返します。
func DefaultCatalog() (*Catalog, error) {
	return LoadCatalog(defaultChoices)
}

// LoadCatalog は {"choices": [...], "<name>": {belief}} 形式のJSONを読み込みます。
func LoadCatalog(data []byte) (*Catalog, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("カタログのJSONパースに失敗しました: %w", err)
	}

	var names []string
	if err := json.Unmarshal(raw[choicesKey], &names); err != nil {
		return nil, fmt.Errorf("カタログに %q の一覧がありません: %w", choicesKey, err)
	}
	if len(names) == 0 {
		return nil, errors.New("カタログが空です")
	}

	entries := make(map[string]domain.Belief, len(names))
	for _, name := range names {
		body, ok := raw[name]
		if !ok {
			return nil, fmt.Errorf("カタログの項目 %q が定義されていません", name)
		}
		var b domain.Belief
		if err := json.Unmarshal(body, &b); err != nil {
			return nil, fmt.Errorf("カタログの項目 %q のパースに失敗しました: %w", name, err)
		}
		if strings.TrimSpace(b.Attribute) == "" {
			return nil, fmt.Errorf("カタログの項目 %q に attribute がありません", name)
		}
		entries[name] = b
	}
	return &Catalog{names: names, entries: entries}, nil
}

// Names は表示順の項目名を返します。
func (c *Catalog) Names() []string {
	return append([]string(nil), c.names...)
}

// Lookup は名前（大文字小文字は区別しない）で項目を探します。
func (c *Catalog) Lookup(name string) (domain.Belief, bool) {
	for _, n := range c.names {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return c.entries[n], true
		}
	}
	return domain.Belief{}, false
}

// At は 1 始まりの番号で項目を返します。
func (c *Catalog) At(number int) (string, domain.Belief, bool) {
	if number < 1 || number > len(c.names) {
		return "", domain.Belief{}, false
	}
	name := c.names[number-1]
	return name, c.entries[name], true
}

// Select は指定された名前の項目を順に集めて CharacterMap を作ります。
func (c *Catalog) Select(names ...string) (domain.CharacterMap, error) {
	if len(names) == 0 {
		return nil, domain.ErrEmptyCharacterMap
	}
	cmap := make(domain.CharacterMap, 0, len(names))
	for _, name := range names {
		b, ok := c.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown ideology %q (choices: %s)", name, strings.Join(c.names, ", "))
		}
		cmap = append(cmap, b)
	}
	return cmap, nil
}
