package prompts

import (
	_ "embed"
)

// 工程ごとのテンプレートモードです。
const (
	ModePhilosophers = "philosophers"
	ModePlot         = "plot"
	ModeStoryboard   = "storyboard"
	ModeImage        = "image"
)

// 各工程でモデルに与える役割（system role）です。
const (
	PhilosopherSystemRole = "You are an expert in philosophy and psychology."
	PlotSystemRole        = "You are a storyboard writer."
	StoryboardSystemRole  = "You are a sharp, witty and relatable philosophical punchline writer."
)

// TemplateData はプロンプトテンプレートに渡すデータ構造です。
type TemplateData struct {
	CharacterMap string
	Philosophers string
	Plot         string
	Count        int
	Caption      string
	Description  string
	StyleSuffix  string
}

var (
	//go:embed templates/philosophers.md
	PhilosophersPrompt string
	//go:embed templates/plot.md
	PlotPrompt string
	//go:embed templates/storyboard.md
	StoryboardPrompt string
	//go:embed templates/image.md
	ImagePrompt string
)

// allTemplates はモードとテンプレート文字列を紐づけるマップです。
var allTemplates = map[string]string{
	ModePhilosophers: PhilosophersPrompt,
	ModePlot:         PlotPrompt,
	ModeStoryboard:   StoryboardPrompt,
	ModeImage:        ImagePrompt,
}
