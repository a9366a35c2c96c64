package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ストーリーボードの必須キーです。順序はエラーメッセージの安定化にも使います。
const (
	KeyListOfPhilosophers = "list_of_philosophers"
	KeyComicCaption       = "comic_caption"
	KeyComicDescription   = "comic_description"
	KeyStory              = "story"
	KeyComicTitle         = "comic_title"

	KeyImageURL = "image_url"
)

var requiredStoryboardKeys = []string{
	KeyListOfPhilosophers,
	KeyComicCaption,
	KeyComicDescription,
	KeyStory,
	KeyComicTitle,
}

var jsonBlockRegex = regexp.MustCompile("(?s)```(?:json)?\\s*(.*\\S)\\s*```")

// ErrImageAlreadyAttached は image_url が二重に設定されようとしたことを表します。
var ErrImageAlreadyAttached = errors.New("image_url is already attached")

// Storyboard は構造化生成出力の契約です。
type Storyboard struct {
	ListOfPhilosophers []string `json:"list_of_philosophers"`
	ComicCaption       string   `json:"comic_caption"`
	ComicDescription   string   `json:"comic_description"`
	Story              string   `json:"story"`
	ComicTitle         string   `json:"comic_title"`

	// ImageURL は ImageSynthesis の後に一度だけ設定されます。
	ImageURL string `json:"image_url,omitempty"`
}

// Validate は5つの必須フィールドが揃っていて空でないことを確認します。
func (s *Storyboard) Validate() error {
	if s == nil {
		return errors.New("storyboard is nil")
	}
	var empty []string
	if len(s.ListOfPhilosophers) == 0 {
		empty = append(empty, KeyListOfPhilosophers)
	}
	for i, name := range s.ListOfPhilosophers {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%s[%d] is blank", KeyListOfPhilosophers, i)
		}
	}
	for _, f := range []struct {
		key   string
		value string
	}{
		{KeyComicCaption, s.ComicCaption},
		{KeyComicDescription, s.ComicDescription},
		{KeyStory, s.Story},
		{KeyComicTitle, s.ComicTitle},
	} {
		if strings.TrimSpace(f.value) == "" {
			empty = append(empty, f.key)
		}
	}
	if len(empty) > 0 {
		return fmt.Errorf("empty required fields: %s", strings.Join(empty, ", "))
	}
	return nil
}

// AttachImageURL は生成画像の参照を設定します。
func (s *Storyboard) AttachImageURL(url string) error {
	if strings.TrimSpace(url) == "" {
		return errors.New("image url is empty")
	}
	if s.ImageURL != "" {
		return ErrImageAlreadyAttached
	}
	s.ImageURL = url
	return nil
}

// ParseStoryboard は生成サービスの応答をパースし、スキーマに合致しなければ SchemaViolation を返します。
// 既定値で黙って埋めることはしません。
func ParseStoryboard(raw string) (*Storyboard, error) {
	body := ExtractJSONObject(raw)
	if body == "" {
		return nil, SchemaViolation(StageStoryboardSynthesis, errors.New("empty response"))
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return nil, SchemaViolation(StageStoryboardSynthesis,
			fmt.Errorf("応答がJSONオブジェクトとして解析できません (抜粋: %q): %w", Truncate(raw, 200), err))
	}

	var missing []string
	for _, key := range requiredStoryboardKeys {
		v, ok := fields[key]
		if !ok || string(v) == "null" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, SchemaViolation(StageStoryboardSynthesis,
			fmt.Errorf("missing required keys: %s", strings.Join(missing, ", ")))
	}

	sb := &Storyboard{}
	if err := json.Unmarshal(fields[KeyListOfPhilosophers], &sb.ListOfPhilosophers); err != nil {
		return nil, SchemaViolation(StageStoryboardSynthesis,
			fmt.Errorf("%s must be an array of strings: %w", KeyListOfPhilosophers, err))
	}
	for key, dst := range map[string]*string{
		KeyComicCaption:     &sb.ComicCaption,
		KeyComicDescription: &sb.ComicDescription,
		KeyStory:            &sb.Story,
		KeyComicTitle:       &sb.ComicTitle,
	} {
		if err := json.Unmarshal(fields[key], dst); err != nil {
			return nil, SchemaViolation(StageStoryboardSynthesis, fmt.Errorf("%s must be a string: %w", key, err))
		}
	}
	// image_url は画像生成後に付与するものなので、応答に含まれていても読まない

	if err := sb.Validate(); err != nil {
		return nil, SchemaViolation(StageStoryboardSynthesis, err)
	}
	return sb, nil
}

// ExtractJSONObject はコードブロックや前置きの文章を取り除き、JSON本体を取り出します。
func ExtractJSONObject(raw string) string {
	raw = strings.TrimSpace(raw)
	if matches := jsonBlockRegex.FindStringSubmatch(raw); len(matches) > 1 {
		return matches[1]
	}
	first := strings.Index(raw, "{")
	last := strings.LastIndex(raw, "}")
	if first != -1 && last > first {
		return raw[first : last+1]
	}
	return raw
}

// Truncate はログやエラー用に文字列を maxLen バイト程度に切り詰めます。
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
