package domain

import "time"

// ImageRef は生成画像への参照です。URL かバイト列のどちらかを持ちます。
type ImageRef struct {
	URL      string
	Data     []byte
	MimeType string
}

// IsZero は参照が空かどうかを返します。
func (r ImageRef) IsZero() bool {
	return r.URL == "" && len(r.Data) == 0
}

// ComicArtifact は1ストーリー分の最終成果物です。永続化後は変更しません。
type ComicArtifact struct {
	ID         string      `json:"id"`
	Index      int         `json:"index"`
	Storyboard *Storyboard `json:"storyboard"`
	ComicPath  string      `json:"comic_path"`
	RecordPath string      `json:"record_path"`
	// DisplayPath は表示用のMarkdown/HTMLのパスです。無効化されている場合は空です。
	DisplayPath string    `json:"display_path,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
