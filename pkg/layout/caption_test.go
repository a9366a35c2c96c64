package layout

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/go-liminal-kit/pkg/config"
	"github.com/shouni/go-liminal-kit/pkg/domain"
)

// fixedMetrics は1文字あたり固定幅で測る配置計算用の代替です。
type fixedMetrics struct {
	charWidth  int
	lineHeight int
}

func (m fixedMetrics) Width(s string) int { return utf8.RuneCountInString(s) * m.charWidth }
func (m fixedMetrics) LineHeight() int { return m.lineHeight }

type staticSource struct {
	data []byte
	err  error
}

func (s staticSource) Fetch(context.Context, domain.ImageRef) ([]byte, error) {
	return s.data, s.err
}

func newTestEngine(t *testing.T, source ImageSource) *Engine {
	t.Helper()
	tf, err := LoadTypeface("", config.DefaultFontSize)
	require.NoError(t, err)
	e, err := NewEngine(source, tf, OptionsFromConfig(config.DefaultConfig().Caption))
	require.NoError(t, err)
	return e
}

func solidPNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestEngine_plan(t *testing.T) {
	e := newTestEngine(t, staticSource{})
	m := fixedMetrics{charWidth: 10, lineHeight: 30}

	t.Run("1行キャプションは帯の中央に配置されること", func(t *testing.T) {
		p := e.plan(m, 1024, 1024, foxCaption)

		assert.Equal(t, 1024, p.Width)
		assert.Equal(t, 1124, p.Height)
		require.Len(t, p.Lines, 1)
		assert.Equal(t, (1024-utf8.RuneCountInString(foxCaption)*10)/2, p.Lines[0].X)
		assert.Equal(t, 1024+(100-30)/2, p.Lines[0].Y)
	})

	t.Run("透かしは右上に余白20pxで配置されること", func(t *testing.T) {
		p := e.plan(m, 1024, 1024, "")
		assert.Equal(t, "@liminal_comics", p.Watermark.Text)
		assert.Equal(t, 1024-(15*10+20), p.Watermark.X)
		assert.Equal(t, 15, p.Watermark.Y)
	})

	t.Run("複数行は同じ起点から行の高さ+5ずつ下がること", func(t *testing.T) {
		caption := strings.Repeat("a ", 95)
		p := e.plan(m, 1024, 1024, caption)
		require.GreaterOrEqual(t, len(p.Lines), 2)

		anchor := 1024 + (100-30)/2
		for i, line := range p.Lines {
			assert.Equal(t, anchor+i*(30+5), line.Y)
			assert.Equal(t, (1024-utf8.RuneCountInString(line.Text)*10)/2, line.X)
		}
	})

	t.Run("帯に収まらない行はキャンバスの外に出て Clipped に数えられること", func(t *testing.T) {
		caption := strings.TrimSpace(strings.Repeat("absurd fox ", 22))
		p := e.plan(m, 400, 300, caption)
		require.Len(t, p.Lines, 4)

		clipped := 0
		for _, line := range p.Lines {
			if line.Y+p.LineHeight > p.Height {
				clipped++
			}
		}
		assert.Equal(t, 2, clipped)
		assert.Equal(t, clipped, p.Clipped)
		assert.Equal(t, 400, p.Height)
	})

	t.Run("1行に収まるキャプションは Clipped が0であること", func(t *testing.T) {
		assert.Zero(t, e.plan(m, 400, 300, foxCaption).Clipped)
	})

	t.Run("空のキャプションでも帯と透かしは残ること", func(t *testing.T) {
		p := e.plan(m, 512, 256, "")
		assert.Equal(t, 356, p.Height)
		assert.NotEmpty(t, p.Watermark.Text)
		require.Len(t, p.Lines, 1)
		assert.Equal(t, "", p.Lines[0].Text)
	})
}

func TestEngine_Compose(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}

	t.Run("キャンバスは元画像の下に100pxの白い帯を持つこと", func(t *testing.T) {
		e := newTestEngine(t, staticSource{data: solidPNG(t, 400, 300, red)})
		ref := domain.ImageRef{URL: "https://img.example.com/fox.png"}

		comp, err := e.Compose(context.Background(), ref, foxCaption)
		require.NoError(t, err)

		assert.Equal(t, image.Rect(0, 0, 400, 400), comp.Image.Bounds())
		assert.Equal(t, red, comp.Image.RGBAAt(0, 0))
		assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, comp.Image.RGBAAt(0, 399))
		require.Len(t, comp.Plan.Lines, 1)

		// キャプション行のどこかに黒に近い画素がある
		line := comp.Plan.Lines[0]
		dark := false
		for y := line.Y; y < line.Y+comp.Plan.LineHeight && !dark; y++ {
			for x := 0; x < 400; x++ {
				if c := comp.Image.RGBAAt(x, y); c.R < 128 && c.G < 128 && c.B < 128 {
					dark = true
					break
				}
			}
		}
		assert.True(t, dark)

		out, err := comp.PNG()
		require.NoError(t, err)
		decoded, err := png.Decode(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, comp.Image.Bounds(), decoded.Bounds())
	})

	t.Run("デコードできない画像は LayoutFailure になること", func(t *testing.T) {
		e := newTestEngine(t, staticSource{data: []byte("not an image")})
		_, err := e.Compose(context.Background(), domain.ImageRef{URL: "https://img.example.com/x.png"}, "x")
		assert.ErrorIs(t, err, domain.ErrLayoutFailure)
		assert.False(t, domain.IsRetryable(err))
	})

	t.Run("取得に失敗した画像は LayoutFailure になること", func(t *testing.T) {
		cause := errors.New("404")
		e := newTestEngine(t, staticSource{err: cause})
		_, err := e.Compose(context.Background(), domain.ImageRef{URL: "https://example.com/x.png"}, "x")
		assert.ErrorIs(t, err, domain.ErrLayoutFailure)
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, domain.StageCaptionLayout, domain.FailedStage(err))
	})

	t.Run("同時に呼び出しても安全であること", func(t *testing.T) {
		e := newTestEngine(t, staticSource{data: solidPNG(t, 128, 128, red)})
		var wg sync.WaitGroup
		errs := make([]error, 8)
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = e.Compose(context.Background(), domain.ImageRef{URL: "mem"}, strings.Repeat("a ", 60))
			}(i)
		}
		wg.Wait()
		for _, err := range errs {
			assert.NoError(t, err)
		}
	})
}

func TestNewEngine_Validation(t *testing.T) {
	tf, err := LoadTypeface("", 24)
	require.NoError(t, err)

	_, err = NewEngine(nil, tf, Options{MaxChars: 80})
	assert.Error(t, err)
	_, err = NewEngine(staticSource{}, nil, Options{MaxChars: 80})
	assert.Error(t, err)
	_, err = NewEngine(staticSource{}, tf, Options{MaxChars: 0})
	assert.Error(t, err)

	_, err = LoadTypeface("", 0)
	assert.Error(t, err)
	_, err = LoadTypeface("/no/such/font.ttf", 24)
	assert.Error(t, err)
}
