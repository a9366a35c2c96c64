package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextPromptBuilder_Build(t *testing.T) {
	pb, err := NewTextPromptBuilder()
	require.NoError(t, err)

	t.Run("哲学者プロンプトに人数と信条が埋め込まれること", func(t *testing.T) {
		out, err := pb.Build(ModePhilosophers, TemplateData{CharacterMap: `[{"attribute":"liberalism"}]`, Count: 10})
		require.NoError(t, err)
		assert.Contains(t, out, "Identify 10 philosophers")
		assert.Contains(t, out, "liberalism")
	})

	t.Run("画像プロンプトは文字の描画を禁止すること", func(t *testing.T) {
		out, err := pb.Build(ModeImage, TemplateData{Caption: "cap", Description: "a fox", StyleSuffix: "pointillism"})
		require.NoError(t, err)
		assert.Contains(t, out, "no text in the image")
		assert.Contains(t, out, "Do NOT render any readable text")
		assert.Contains(t, out, "a fox")
	})

	t.Run("ストーリーボードプロンプトは5つのキーを要求すること", func(t *testing.T) {
		out, err := pb.Build(ModeStoryboard, TemplateData{Philosophers: "1. Camus", Plot: "plot"})
		require.NoError(t, err)
		for _, key := range []string{"list_of_philosophers", "comic_caption", "comic_description", "story", "comic_title"} {
			assert.Contains(t, out, `"`+key+`"`)
		}
	})

	t.Run("不明なモードはエラーになること", func(t *testing.T) {
		_, err := pb.Build("unknown", TemplateData{})
		assert.Error(t, err)
	})
}

func TestNewTextPromptBuilderWith(t *testing.T) {
	pb, err := NewTextPromptBuilderWith(map[string]string{ModePlot: "plot for {{.Philosophers}}"})
	require.NoError(t, err)

	out, err := pb.Build(ModePlot, TemplateData{Philosophers: "Kafka"})
	require.NoError(t, err)
	assert.Equal(t, "plot for Kafka", out)

	_, err = NewTextPromptBuilderWith(map[string]string{ModePlot: "{{.Broken"})
	assert.Error(t, err)

	_, err = NewTextPromptBuilderWith(map[string]string{ModePlot: "   "})
	assert.Error(t, err)
}
