package publisher

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/shouni/go-remote-io/pkg/remoteio"
)

// OutputWriter はデータを外部ストレージに保存するためのインターフェースです。
// 書き込みは remoteio に合わせ、ロールバック用に Remove を追加しています。
type OutputWriter interface {
	remoteio.OutputWriter
	Remove(ctx context.Context, path string) error
}

// LocalWriter は remoteio の汎用ライターでローカルファイルへ書き込む OutputWriter 実装です。
// GCS/S3 クライアントを持たないため、リモートの URI への書き込みはエラーになります。
type LocalWriter struct {
	remoteio.OutputWriter
}

// NewLocalWriter は LocalWriter を返します。
func NewLocalWriter() *LocalWriter {
	return &LocalWriter{OutputWriter: remoteio.NewUniversalIOWriter(nil, nil)}
}

// Remove は path を削除します。存在しない場合は何もしません。
func (w *LocalWriter) Remove(_ context.Context, path string) error {
	if remoteio.IsRemoteURI(path) {
		return fmt.Errorf("リモートの出力先は削除できません: %s", path)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("ファイルの削除に失敗しました %s: %w", path, err)
	}
	return nil
}
