package layout

import (
	"fmt"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Typeface は解析済みのフォントとサイズを保持します。
// font.Face は並行利用できないため、描画ごとに NewFace で作り直すのだ
type Typeface struct {
	font *opentype.Font
	size float64
}

// LoadTypeface は path のTrueType/OpenTypeフォントを読み込みます。
// path が空の場合は組み込みの Go Regular を使います。
func LoadTypeface(path string, size float64) (*Typeface, error) {
	if size <= 0 {
		return nil, fmt.Errorf("font size must be positive: %v", size)
	}

	data := goregular.TTF
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("フォントファイルの読み込みに失敗しました (%s): %w", path, err)
		}
		data = b
	}

	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("フォントの解析に失敗しました: %w", err)
	}
	return &Typeface{font: f, size: size}, nil
}

// NewFace は描画1回分の font.Face を生成します。呼び出し側で Close してください。
func (t *Typeface) NewFace() (font.Face, error) {
	face, err := opentype.NewFace(t.font, &opentype.FaceOptions{
		Size:    t.size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("フォントフェイスの生成に失敗しました: %w", err)
	}
	return face, nil
}
