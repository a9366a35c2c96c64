package asset

import (
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var comicNameRegex = regexp.MustCompile(`^comic_\d{14}_\d+_[0-9a-f]{8}\.png$`)

func TestNamer_Next(t *testing.T) {
	t.Run("ファイル名が規定の形式であること", func(t *testing.T) {
		n := &Namer{
			now:   func() time.Time { return time.Date(2026, 10, 18, 9, 30, 5, 0, time.UTC) },
			newID: func() string { return "1234abcd-0000-0000-0000-000000000000" },
		}
		k := n.Next(3)
		assert.Equal(t, "comic_20261018093005_3_1234abcd.png", k.FileName(ComicPrefix, "png"))
		assert.Equal(t, "story_20261018093005_3_1234abcd.json", k.FileName(StoryPrefix, ".json"))
	})

	t.Run("同じ秒に並行して払い出しても衝突しないこと", func(t *testing.T) {
		n := NewNamer()
		fixed := time.Now()
		n.now = func() time.Time { return fixed }

		const workers = 64
		names := make([]string, workers)
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				names[i] = n.Next(i % 4).FileName(ComicPrefix, "png")
			}(i)
		}
		wg.Wait()

		seen := make(map[string]bool, workers)
		for _, name := range names {
			require.Regexp(t, comicNameRegex, name)
			assert.False(t, seen[name], name)
			seen[name] = true
		}
	})
}

func TestResolveOutputPath(t *testing.T) {
	p, err := ResolveOutputPath("output", "comic.png")
	require.NoError(t, err)
	assert.Equal(t, "output/comic.png", p)
}
