package layout

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

const foxCaption = "The fox files taxes for the first time and weeps at the audit."

func TestWrapCaption(t *testing.T) {
	t.Run("80文字以下のキャプションは1行のままであること", func(t *testing.T) {
		lines := WrapCaption(foxCaption, 80)
		assert.Equal(t, []string{foxCaption}, lines)
	})

	t.Run("ちょうど80文字は1行であること", func(t *testing.T) {
		caption := strings.Repeat("x", 80)
		assert.Equal(t, []string{caption}, WrapCaption(caption, 80))
	})

	t.Run("81文字は折り返されること", func(t *testing.T) {
		caption := strings.Repeat("abcd ", 16) + "e" // 81文字
		lines := WrapCaption(caption, 80)
		assert.Greater(t, len(lines), 1)
	})

	t.Run("\"a \" の繰り返しは80文字以下の複数行になること", func(t *testing.T) {
		for _, caption := range []string{
			strings.Repeat("a ", 48)[:95],
			strings.Repeat("a ", 95),
		} {
			lines := WrapCaption(caption, 80)
			assert.GreaterOrEqual(t, len(lines), 2)
			for _, line := range lines {
				assert.LessOrEqual(t, utf8.RuneCountInString(line), 80)
			}
		}
	})

	t.Run("80文字を超える単語は分割されず単独の行になること", func(t *testing.T) {
		long := strings.Repeat("z", 95)
		lines := WrapCaption("short words "+long+" tail", 80)
		assert.Equal(t, []string{"short words", long, "tail"}, lines)
	})

	t.Run("空のキャプションは空の1行になること", func(t *testing.T) {
		assert.Equal(t, []string{""}, WrapCaption("", 80))
	})

	t.Run("マルチバイト文字は rune 数で数えること", func(t *testing.T) {
		caption := strings.Repeat("あ", 80)
		assert.Equal(t, []string{caption}, WrapCaption(caption, 80))
	})
}

func TestWrapCaption_Properties(t *testing.T) {
	captions := []string{
		strings.Repeat("a ", 95),
		"When the owl finally read Nietzsche it decided that the night shift was a form of eternal recurrence, and asked for a raise.",
		"The bear insists on collective ownership of the honey but keeps a secret jar under the floorboards just in case the revolution is postponed again.",
		strings.Repeat("word ", 40) + strings.Repeat("q", 120) + " end",
		"  leading and trailing spaces survive only on single lines, but this one is long enough to wrap for sure yes  ",
	}

	for _, caption := range captions {
		lines := WrapCaption(caption, 80)

		// 折り返し位置以外の文字は失われない
		assert.Equal(t, strings.Fields(caption), strings.Fields(strings.Join(lines, " ")))

		for _, line := range lines {
			assert.NotEmpty(t, line)
			if utf8.RuneCountInString(line) > 80 {
				assert.NotContains(t, line, " ", "80文字を超えてよいのは単語1つの行だけ")
			}
		}

		// 冪等性
		assert.Equal(t, lines, WrapCaption(strings.Join(lines, " "), 80))
	}
}
