package asset

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// 成果物ファイル名の接頭辞です。
const (
	ComicPrefix  = "comic"
	StoryPrefix  = "story"
	SourcePrefix = "source"

	timestampLayout = "20060102150405"
)

// Key は1ストーリー分の成果物に共通するファイル名の要素です。
// 秒単位のタイムスタンプだけでは同時に完了したワーカー同士で衝突するため、
// インデックスとランダムなIDを併せて持つのだ
type Key struct {
	Stamp string
	Index int
	ID    string
}

// FileName は "<prefix>_<stamp>_<index>_<id>.<ext>" 形式の名前を返します。
func (k Key) FileName(prefix, ext string) string {
	return fmt.Sprintf("%s_%s_%d_%s.%s", prefix, k.Stamp, k.Index, k.ID, strings.TrimPrefix(ext, "."))
}

// Namer は衝突しない Key を払い出します。
type Namer struct {
	now   func() time.Time
	newID func() string
}

// NewNamer は現在時刻と UUID を使う Namer を返します。
func NewNamer() *Namer {
	return &Namer{
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Next は index 番目のストーリー用の Key を生成します。
func (n *Namer) Next(index int) Key {
	id := strings.ReplaceAll(n.newID(), "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	return Key{
		Stamp: n.now().Format(timestampLayout),
		Index: index,
		ID:    id,
	}
}
