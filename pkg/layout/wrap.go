package layout

import (
	"strings"
	"unicode/utf8"
)

// WrapCaption は caption を limit 文字（rune 数）以下の行に分割します。
//
// limit 以下のキャプションはそのまま1行で返します（空文字も1行）。
// それより長い場合は空白区切りの単語を貪欲に詰め、区切りの空白を含めた行の長さが
// limit を超える直前で改行します。limit を超える単語は分割せず、単独の行になります。
func WrapCaption(caption string, limit int) []string {
	if limit < 1 {
		limit = 1
	}
	if utf8.RuneCountInString(caption) <= limit {
		return []string{caption}
	}

	var lines []string
	var current strings.Builder
	currentLen := 0
	for _, word := range strings.Fields(caption) {
		wordLen := utf8.RuneCountInString(word)
		if currentLen > 0 && currentLen+1+wordLen > limit {
			lines = append(lines, current.String())
			current.Reset()
			currentLen = 0
		}
		if currentLen > 0 {
			current.WriteByte(' ')
			currentLen++
		}
		current.WriteString(word)
		currentLen += wordLen
	}
	if currentLen > 0 {
		lines = append(lines, current.String())
	}
	if len(lines) == 0 {
		// 空白だけの長いキャプション
		return []string{""}
	}
	return lines
}
