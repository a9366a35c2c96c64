package layout

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"log/slog"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	_ "golang.org/x/image/webp"

	"github.com/shouni/go-liminal-kit/pkg/config"
	"github.com/shouni/go-liminal-kit/pkg/domain"
)

const (
	watermarkTop         = 15
	watermarkRightMargin = 20
	watermarkStroke      = 2
)

// Options はキャプション合成のパラメータです。
type Options struct {
	Watermark   string
	BandHeight  int
	MaxChars    int
	LineSpacing int
}

// OptionsFromConfig は config.Caption から Options を作ります。
func OptionsFromConfig(c config.Caption) Options {
	return Options{
		Watermark:   c.Watermark,
		BandHeight:  c.BandHeight,
		MaxChars:    c.MaxChars,
		LineSpacing: c.LineSpacing,
	}
}

// Placement は1行分の文字列と、その描画位置（左上）です。
type Placement struct {
	Text string
	X    int
	Y    int
}

// Plan は描画前に確定するキャンバスと文字の配置です。
type Plan struct {
	Width        int
	Height       int
	SourceHeight int
	LineHeight   int
	Watermark    Placement
	Lines        []Placement
	// Clipped は帯に収まらずキャンバスの外にはみ出した行の数です。
	Clipped int
}

// Composition は合成結果の画像と、その配置です。
type Composition struct {
	Image *image.RGBA
	Plan  Plan
}

// EncodePNG は合成画像を PNG として w に書き出します。
func (c *Composition) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, c.Image); err != nil {
		return fmt.Errorf("PNGエンコードに失敗しました: %w", err)
	}
	return nil
}

// PNG は合成画像の PNG バイト列を返します。
func (c *Composition) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := c.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Engine は生成画像の下に白い帯を付け、キャプションと透かしを描画します。
// 状態を持たないため複数のストーリーから同時に呼び出せます。
type Engine struct {
	source   ImageSource
	typeface *Typeface
	opts     Options
}

// NewEngine は Engine を初期化します。
func NewEngine(source ImageSource, typeface *Typeface, opts Options) (*Engine, error) {
	if source == nil {
		return nil, errors.New("ImageSource は必須です")
	}
	if typeface == nil {
		return nil, errors.New("Typeface は必須です")
	}
	if opts.BandHeight < 0 || opts.MaxChars < 1 {
		return nil, fmt.Errorf("invalid caption options: band=%d limit=%d", opts.BandHeight, opts.MaxChars)
	}
	return &Engine{source: source, typeface: typeface, opts: opts}, nil
}

// Compose は ref の画像を取得し、キャプションを合成します。
// 取得やデコードに失敗した場合は LayoutFailure を返します。
func (e *Engine) Compose(ctx context.Context, ref domain.ImageRef, caption string) (*Composition, error) {
	data, err := e.source.Fetch(ctx, ref)
	if err != nil {
		return nil, domain.LayoutFailure(err)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, domain.LayoutFailure(fmt.Errorf("画像のデコードに失敗しました: %w", err))
	}

	return e.ComposeImage(src, caption)
}

// ComposeImage はデコード済みの画像にキャプションを合成します。
func (e *Engine) ComposeImage(src image.Image, caption string) (*Composition, error) {
	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, domain.LayoutFailure(fmt.Errorf("画像サイズが不正です: %dx%d", b.Dx(), b.Dy()))
	}

	face, err := e.typeface.NewFace()
	if err != nil {
		return nil, domain.LayoutFailure(err)
	}
	defer face.Close()

	plan := e.plan(faceMetrics{face: face}, b.Dx(), b.Dy(), caption)
	if plan.Clipped > 0 {
		slog.Warn("Caption overflows the band",
			"lines", len(plan.Lines),
			"clipped", plan.Clipped,
			"band_height", e.opts.BandHeight,
		)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, plan.Width, plan.Height))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(canvas, image.Rect(0, 0, b.Dx(), b.Dy()), src, b.Min, draw.Over)

	ascent := face.Metrics().Ascent.Ceil()
	if plan.Watermark.Text != "" {
		drawStroked(canvas, face, plan.Watermark, ascent)
	}
	for _, line := range plan.Lines {
		drawText(canvas, face, line, ascent, color.Black)
	}

	return &Composition{Image: canvas, Plan: plan}, nil
}

// Plan は画像サイズとキャプションから描画位置を計算します。画像の取得は行いません。
func (e *Engine) Plan(width, height int, caption string) (Plan, error) {
	face, err := e.typeface.NewFace()
	if err != nil {
		return Plan{}, err
	}
	defer face.Close()
	return e.plan(faceMetrics{face: face}, width, height, caption), nil
}

// metrics は配置計算に必要な文字幅と行の高さを提供します。
type metrics interface {
	Width(s string) int
	LineHeight() int
}

type faceMetrics struct {
	face font.Face
}

func (m faceMetrics) Width(s string) int {
	return font.MeasureString(m.face, s).Ceil()
}

func (m faceMetrics) LineHeight() int {
	fm := m.face.Metrics()
	return (fm.Ascent + fm.Descent).Ceil()
}

func (e *Engine) plan(m metrics, width, height int, caption string) Plan {
	lineHeight := m.LineHeight()
	p := Plan{
		Width:        width,
		Height:       height + e.opts.BandHeight,
		SourceHeight: height,
		LineHeight:   lineHeight,
	}

	if e.opts.Watermark != "" {
		p.Watermark = Placement{
			Text: e.opts.Watermark,
			X:    width - (m.Width(e.opts.Watermark) + watermarkRightMargin),
			Y:    watermarkTop,
		}
	}

	anchor := height + (e.opts.BandHeight-lineHeight)/2
	for i, line := range WrapCaption(caption, e.opts.MaxChars) {
		y := anchor + i*(lineHeight+e.opts.LineSpacing)
		if y+lineHeight > p.Height {
			p.Clipped++
		}
		p.Lines = append(p.Lines, Placement{
			Text: line,
			X:    (width - m.Width(line)) / 2,
			Y:    y,
		})
	}
	return p
}

func drawText(dst draw.Image, face font.Face, p Placement, ascent int, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(p.X, p.Y+ascent),
	}
	d.DrawString(p.Text)
}

// drawStroked は白い縁取りの上に黒い文字を描きます。
func drawStroked(dst draw.Image, face font.Face, p Placement, ascent int) {
	for dy := -watermarkStroke; dy <= watermarkStroke; dy++ {
		for dx := -watermarkStroke; dx <= watermarkStroke; dx++ {
			if (dx == 0 && dy == 0) || dx*dx+dy*dy > watermarkStroke*watermarkStroke {
				continue
			}
			drawText(dst, face, Placement{Text: p.Text, X: p.X + dx, Y: p.Y + dy}, ascent, color.White)
		}
	}
	drawText(dst, face, p, ascent, color.Black)
}
