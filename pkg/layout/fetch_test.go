package layout

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shouni/go-http-kit/httpkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/go-liminal-kit/pkg/domain"
)

// newTestHTTPClient は httptest のループバックに届くよう検証を外したクライアントを返します。
func newTestHTTPClient() *httpkit.Client {
	return httpkit.New(5*time.Second,
		httpkit.WithSkipNetworkValidation(true),
		httpkit.WithMaxRetries(0),
	)
}

func TestFetcher_Fetch(t *testing.T) {
	t.Run("同じURLは一度だけダウンロードされること", func(t *testing.T) {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			_, _ = w.Write([]byte("image-bytes"))
		}))
		defer srv.Close()

		f := NewFetcher(newTestHTTPClient(), 0, 0)
		ref := domain.ImageRef{URL: srv.URL + "/a.png"}

		var wg sync.WaitGroup
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				data, err := f.Fetch(context.Background(), ref)
				assert.NoError(t, err)
				assert.Equal(t, []byte("image-bytes"), data)
			}()
		}
		wg.Wait()

		data, err := f.Fetch(context.Background(), ref)
		require.NoError(t, err)
		assert.Equal(t, []byte("image-bytes"), data)
		assert.LessOrEqual(t, int(hits.Load()), 5)
		assert.Equal(t, int(hits.Load()), f.Downloads())
	})

	t.Run("先に待っていた呼び出し元のキャンセルが他の呼び出し元に波及しないこと", func(t *testing.T) {
		started := make(chan struct{})
		release := make(chan struct{})
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if hits.Add(1) == 1 {
				close(started)
			}
			<-release
			_, _ = w.Write([]byte("shared"))
		}))
		defer srv.Close()

		f := NewFetcher(newTestHTTPClient(), 0, 0)
		ref := domain.ImageRef{URL: srv.URL + "/slow.png"}

		firstCtx, cancelFirst := context.WithCancel(context.Background())
		firstErr := make(chan error, 1)
		go func() {
			_, err := f.Fetch(firstCtx, ref)
			firstErr <- err
		}()
		<-started

		type result struct {
			data []byte
			err  error
		}
		second := make(chan result, 1)
		go func() {
			data, err := f.Fetch(context.Background(), ref)
			second <- result{data, err}
		}()

		cancelFirst()
		assert.True(t, errors.Is(<-firstErr, context.Canceled))

		close(release)
		res := <-second
		require.NoError(t, res.err)
		assert.Equal(t, []byte("shared"), res.data)
		assert.Equal(t, int32(1), hits.Load())
	})

	t.Run("404はエラーになること", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		f := NewFetcher(newTestHTTPClient(), 0, 0)
		_, err := f.Fetch(context.Background(), domain.ImageRef{URL: srv.URL + "/missing.png"})
		require.Error(t, err)
		assert.True(t, httpkit.IsNonRetryableError(err))
	})

	t.Run("インラインのバイト列はそのまま返ること", func(t *testing.T) {
		f := NewFetcher(nil, 0, 0)
		data, err := f.Fetch(context.Background(), domain.ImageRef{Data: []byte{1, 2, 3}})
		require.NoError(t, err)
		assert.Equal(t, []byte{1, 2, 3}, data)
		assert.Equal(t, 0, f.Downloads())
	})

	t.Run("ローカルファイルを読み込めること", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "src.png")
		require.NoError(t, os.WriteFile(path, []byte("local"), 0o644))

		f := NewFetcher(nil, 0, 0)
		data, err := f.Fetch(context.Background(), domain.ImageRef{URL: path})
		require.NoError(t, err)
		assert.Equal(t, []byte("local"), data)

		data, err = f.Fetch(context.Background(), domain.ImageRef{URL: "file://" + path})
		require.NoError(t, err)
		assert.Equal(t, []byte("local"), data)
	})

	t.Run("空の参照はエラーになること", func(t *testing.T) {
		_, err := NewFetcher(nil, 0, 0).Fetch(context.Background(), domain.ImageRef{})
		assert.Error(t, err)
	})
}
