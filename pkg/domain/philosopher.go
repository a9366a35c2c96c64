package domain

import (
	"fmt"
	"strings"
)

// Philosopher はユーザーの信条と対照的な思想家1人分の情報です。
type Philosopher struct {
	Name    string `json:"name"`
	Summary string `json:"summary"`
}

// PhilosopherSet はバッチごとに1度だけ選ばれ、全ストーリーで読み取り専用に共有されます。
type PhilosopherSet struct {
	Philosophers []Philosopher `json:"philosophers"`
}

// Validate は want 人ちょうどで、各エントリに名前と要約があることを確認します。
func (s PhilosopherSet) Validate(want int) error {
	if len(s.Philosophers) != want {
		return fmt.Errorf("expected %d philosophers, got %d", want, len(s.Philosophers))
	}
	for i, p := range s.Philosophers {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("philosopher %d has no name", i+1)
		}
		if strings.TrimSpace(p.Summary) == "" {
			return fmt.Errorf("philosopher %d (%s) has no summary", i+1, p.Name)
		}
	}
	return nil
}

// Names は名前の一覧を返します。
func (s PhilosopherSet) Names() []string {
	names := make([]string, 0, len(s.Philosophers))
	for _, p := range s.Philosophers {
		names = append(names, p.Name)
	}
	return names
}

// String は後続工程のプロンプトに埋め込む番号付きリストを返します。
func (s PhilosopherSet) String() string {
	var sb strings.Builder
	for i, p := range s.Philosophers {
		fmt.Fprintf(&sb, "%d. %s: %s\n", i+1, p.Name, p.Summary)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Plot は1ストーリー分の自由形式のあらすじです。
type Plot string
