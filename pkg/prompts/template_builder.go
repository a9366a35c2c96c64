package prompts

import (
	"fmt"
	"strings"
	"text/template"
)

// TextPromptBuilder はプロンプトテンプレートの構成を管理し、モード選択のロジックを内包します。
type TextPromptBuilder struct {
	templates map[string]*template.Template
}

// NewTextPromptBuilder は組み込みテンプレートで TextPromptBuilder を初期化します。
func NewTextPromptBuilder() (*TextPromptBuilder, error) {
	return NewTextPromptBuilderWith(nil)
}

// NewTextPromptBuilderWith は組み込みテンプレートの一部を overrides で差し替えて初期化します。
func NewTextPromptBuilderWith(overrides map[string]string) (*TextPromptBuilder, error) {
	sources := make(map[string]string, len(allTemplates))
	for mode, content := range allTemplates {
		sources[mode] = content
	}
	for mode, content := range overrides {
		sources[mode] = content
	}

	parsedTemplates := make(map[string]*template.Template, len(sources))
	for mode, content := range sources {
		if strings.TrimSpace(content) == "" {
			return nil, fmt.Errorf("プロンプトテンプレート '%s' の読み込みに失敗しました: 内容が空です", mode)
		}

		tmpl, err := template.New(mode).Option("missingkey=error").Parse(content)
		if err != nil {
			return nil, fmt.Errorf("プロンプト '%s' の解析に失敗: %w", mode, err)
		}
		parsedTemplates[mode] = tmpl
	}

	return &TextPromptBuilder{
		templates: parsedTemplates,
	}, nil
}

// Build は、要求されたモードに応じて適切なテンプレートを実行します。
func (b *TextPromptBuilder) Build(mode string, data TemplateData) (string, error) {
	tmpl, ok := b.templates[mode]
	if !ok {
		return "", fmt.Errorf("不明なモードです: '%s'", mode)
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("プロンプトテンプレートの実行に失敗しました: %w", err)
	}

	return strings.TrimSpace(sb.String()), nil
}
