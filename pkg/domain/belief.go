package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Belief は質問票の1項目に対するユーザーの回答です。
type Belief struct {
	Category    string `json:"category"`
	Attribute   string `json:"attribute"` // 安定した識別子
	Description string `json:"description"`
}

// CharacterMap はユーザーの信条を順序付きで保持します。
// パイプラインに渡した後は変更しません。
type CharacterMap []Belief

// ErrEmptyCharacterMap は信条が1つも無いことを表します。
var ErrEmptyCharacterMap = errors.New("character map is empty")

// Validate は CharacterMap が空でなく、各 Belief に属性があることを確認します。
func (m CharacterMap) Validate() error {
	if len(m) == 0 {
		return ErrEmptyCharacterMap
	}
	for i, b := range m {
		if strings.TrimSpace(b.Attribute) == "" {
			return fmt.Errorf("belief %d (%q) has no attribute", i, b.Category)
		}
	}
	return nil
}

// Clone は呼び出し元の変更から守るためのコピーを返します。
func (m CharacterMap) Clone() CharacterMap {
	if m == nil {
		return nil
	}
	out := make(CharacterMap, len(m))
	copy(out, m)
	return out
}

// Attributes は属性名を順序どおりに返します。
func (m CharacterMap) Attributes() []string {
	attrs := make([]string, 0, len(m))
	for _, b := range m {
		attrs = append(attrs, b.Attribute)
	}
	return attrs
}

// JSON はプロンプト埋め込み用にインデント付きで整形します。
func (m CharacterMap) JSON() (string, error) {
	data, err := json.MarshalIndent(m, "", "    ")
	if err != nil {
		return "", fmt.Errorf("character map のエンコードに失敗しました: %w", err)
	}
	return string(data), nil
}

// ParseCharacterMap はJSON配列から CharacterMap を読み込み、検証します。
func ParseCharacterMap(data []byte) (CharacterMap, error) {
	var m CharacterMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("character map のJSONパースに失敗しました: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
