package publisher

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/shouni/go-liminal-kit/pkg/domain"
)

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { max-width: 760px; margin: 2rem auto; font-family: sans-serif; line-height: 1.6; }
img { max-width: 100%%; }
</style>
</head>
<body>
%s</body>
</html>
`

// buildMarkdown はタイトル・コマ・ストーリー・思想家・描写を並べた表示用 Markdown を返します。
func buildMarkdown(sb *domain.Storyboard, comicFile string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", sb.ComicTitle)
	fmt.Fprintf(&b, "![%s](%s)\n\n", sb.ComicTitle, comicFile)
	fmt.Fprintf(&b, "%s\n\n", strings.TrimSpace(sb.Story))

	b.WriteString("## Philosophers\n\n")
	for _, name := range sb.ListOfPhilosophers {
		fmt.Fprintf(&b, "- %s\n", name)
	}
	b.WriteString("\n## Description\n\n")
	fmt.Fprintf(&b, "%s\n", strings.TrimSpace(sb.ComicDescription))
	return b.String()
}

// renderHTML は Markdown を goldmark で変換し、単体で開ける HTML 文書にします。
func renderHTML(md goldmark.Markdown, title, markdown string) ([]byte, error) {
	var body bytes.Buffer
	if err := md.Convert([]byte(markdown), &body); err != nil {
		return nil, fmt.Errorf("HTMLの変換に失敗しました: %w", err)
	}
	return []byte(fmt.Sprintf(htmlTemplate, html.EscapeString(title), body.String())), nil
}

func newMarkdownRenderer() goldmark.Markdown {
	return goldmark.New(goldmark.WithRendererOptions(gmhtml.WithHardWraps()))
}
