package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"github.com/shouni/go-liminal-kit/pkg/asset"
	"github.com/shouni/go-liminal-kit/pkg/domain"
)

// Options はパブリッシュ動作を制御する設定項目です。
type Options struct {
	OutputDir    string
	WriteDisplay bool
}

// Input は1ストーリー分の永続化対象です。
type Input struct {
	Index      int
	Storyboard *domain.Storyboard
	// Comic は合成済み画像の PNG バイト列です。
	Comic []byte
	// Source は生成された元画像です。URL を持たない場合はファイルとして保存します。
	Source domain.ImageRef
}

// ComicPublisher は成果物の永続化と表示用ファイルの生成を担います。
type ComicPublisher struct {
	writer   OutputWriter
	namer    *asset.Namer
	markdown goldmark.Markdown
	opts     Options
	now      func() time.Time
}

// NewComicPublisher は ComicPublisher を初期化します。
func NewComicPublisher(writer OutputWriter, opts Options) (*ComicPublisher, error) {
	if writer == nil {
		return nil, errors.New("OutputWriter は必須です")
	}
	if opts.OutputDir == "" {
		return nil, errors.New("OutputDir は必須です")
	}
	return &ComicPublisher{
		writer:   writer,
		namer:    asset.NewNamer(),
		markdown: newMarkdownRenderer(),
		opts:     opts,
		now:      time.Now,
	}, nil
}

// Publish はコマ画像とストーリーの記録を書き出し、成果物を返します。
// 記録の書き込みに失敗した場合は、書き込み済みの画像を削除して PersistenceFailure を返すのだ
func (p *ComicPublisher) Publish(ctx context.Context, in Input) (*domain.ComicArtifact, error) {
	if in.Storyboard == nil {
		return nil, domain.PersistenceFailure(errors.New("storyboard is nil"))
	}
	if len(in.Comic) == 0 {
		return nil, domain.PersistenceFailure(errors.New("comic image is empty"))
	}

	key := p.namer.Next(in.Index)
	var written []string
	rollback := func() {
		for _, path := range written {
			if err := p.writer.Remove(ctx, path); err != nil {
				slog.WarnContext(ctx, "Failed to roll back artifact", "path", path, "error", err)
			}
		}
	}

	// 1. URL を持たない元画像を保存し、その場所を image_url にする
	// ストーリーボード本体への付与は全ての書き込みが成功してからなのだ
	staged := *in.Storyboard
	if staged.ImageURL == "" {
		sourcePath, err := p.saveSource(ctx, key, in.Source)
		if err != nil {
			return nil, domain.PersistenceFailure(err)
		}
		written = append(written, sourcePath)
		if err := staged.AttachImageURL(sourcePath); err != nil {
			rollback()
			return nil, domain.PersistenceFailure(err)
		}
	}

	// 2. 合成済みのコマ
	comicPath, err := p.resolve(key.FileName(asset.ComicPrefix, "png"))
	if err != nil {
		rollback()
		return nil, domain.PersistenceFailure(err)
	}
	if err := p.writer.Write(ctx, comicPath, bytes.NewReader(in.Comic), "image/png"); err != nil {
		rollback()
		return nil, domain.PersistenceFailure(fmt.Errorf("画像の書き込みに失敗しました: %w", err))
	}
	written = append(written, comicPath)

	// 3. ストーリーの記録
	recordPath, err := p.resolve(key.FileName(asset.StoryPrefix, "json"))
	if err != nil {
		rollback()
		return nil, domain.PersistenceFailure(err)
	}
	record, err := json.MarshalIndent(&staged, "", "    ")
	if err != nil {
		rollback()
		return nil, domain.PersistenceFailure(fmt.Errorf("記録のエンコードに失敗しました: %w", err))
	}
	if err := p.writer.Write(ctx, recordPath, bytes.NewReader(record), "application/json"); err != nil {
		rollback()
		return nil, domain.PersistenceFailure(fmt.Errorf("記録の書き込みに失敗しました: %w", err))
	}

	if in.Storyboard.ImageURL == "" {
		if err := in.Storyboard.AttachImageURL(staged.ImageURL); err != nil {
			rollback()
			return nil, domain.PersistenceFailure(err)
		}
	}

	artifact := &domain.ComicArtifact{
		ID:         key.ID,
		Index:      in.Index,
		Storyboard: in.Storyboard,
		ComicPath:  comicPath,
		RecordPath: recordPath,
		CreatedAt:  p.now(),
	}

	// 4. 表示用ファイルは補助的なものなので、失敗しても成果物は有効とする
	if p.opts.WriteDisplay {
		displayPath, err := p.writeDisplay(ctx, key, in.Storyboard, filepath.Base(comicPath))
		if err != nil {
			slog.WarnContext(ctx, "Failed to write display files", "index", in.Index, "error", err)
		} else {
			artifact.DisplayPath = displayPath
		}
	}

	slog.InfoContext(ctx, "Comic published",
		"index", in.Index,
		"title", in.Storyboard.ComicTitle,
		"comic", comicPath,
		"record", recordPath,
	)
	return artifact, nil
}

// SaveComic は合成済み画像だけを保存し、そのパスを返します。
func (p *ComicPublisher) SaveComic(ctx context.Context, index int, comic []byte) (string, error) {
	if len(comic) == 0 {
		return "", domain.PersistenceFailure(errors.New("comic image is empty"))
	}
	path, err := p.resolve(p.namer.Next(index).FileName(asset.ComicPrefix, "png"))
	if err != nil {
		return "", domain.PersistenceFailure(err)
	}
	if err := p.writer.Write(ctx, path, bytes.NewReader(comic), "image/png"); err != nil {
		return "", domain.PersistenceFailure(fmt.Errorf("画像の書き込みに失敗しました: %w", err))
	}
	return path, nil
}

func (p *ComicPublisher) saveSource(ctx context.Context, key asset.Key, ref domain.ImageRef) (string, error) {
	if len(ref.Data) == 0 {
		return "", errors.New("source image has neither url nor data")
	}
	path, err := p.resolve(key.FileName(asset.SourcePrefix, extensionFor(ref.MimeType)))
	if err != nil {
		return "", err
	}
	contentType := ref.MimeType
	if contentType == "" {
		contentType = "image/png"
	}
	if err := p.writer.Write(ctx, path, bytes.NewReader(ref.Data), contentType); err != nil {
		return "", fmt.Errorf("元画像の書き込みに失敗しました: %w", err)
	}
	return path, nil
}

func (p *ComicPublisher) writeDisplay(ctx context.Context, key asset.Key, sb *domain.Storyboard, comicFile string) (string, error) {
	content := buildMarkdown(sb, comicFile)

	mdPath, err := p.resolve(key.FileName(asset.StoryPrefix, "md"))
	if err != nil {
		return "", err
	}
	if err := p.writer.Write(ctx, mdPath, strings.NewReader(content), "text/markdown; charset=utf-8"); err != nil {
		return "", fmt.Errorf("markdownファイルの書き込みに失敗しました: %w", err)
	}

	htmlDoc, err := renderHTML(p.markdown, sb.ComicTitle, content)
	if err != nil {
		return "", err
	}
	htmlPath := strings.TrimSuffix(mdPath, filepath.Ext(mdPath)) + ".html"
	if err := p.writer.Write(ctx, htmlPath, bytes.NewReader(htmlDoc), "text/html; charset=utf-8"); err != nil {
		return "", fmt.Errorf("HTMLファイルの書き込みに失敗しました: %w", err)
	}
	return htmlPath, nil
}

func (p *ComicPublisher) resolve(fileName string) (string, error) {
	path, err := asset.ResolveOutputPath(p.opts.OutputDir, fileName)
	if err != nil {
		return "", fmt.Errorf("出力パスの解決に失敗しました: %w", err)
	}
	return path, nil
}

// extensionFor は MIME タイプに対応する拡張子を返します。不明な場合は png です。
func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/png", "":
		return "png"
	case "image/jpeg":
		return "jpg"
	case "image/webp":
		return "webp"
	}
	if exts, err := mime.ExtensionsByType(mimeType); err == nil && len(exts) > 0 {
		return strings.TrimPrefix(exts[0], ".")
	}
	return "png"
}
