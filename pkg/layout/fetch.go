package layout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shouni/go-http-kit/httpkit"
	"github.com/shouni/go-remote-io/pkg/remoteio"
	"golang.org/x/sync/singleflight"

	"github.com/shouni/go-liminal-kit/pkg/domain"
)

const (
	defaultCacheExpiration = 5 * time.Minute
	cacheCleanupInterval   = 10 * time.Minute
	defaultLoadTimeout     = 60 * time.Second
)

// ImageSource は ImageRef から画像のバイト列を取り出します。
type ImageSource interface {
	Fetch(ctx context.Context, ref domain.ImageRef) ([]byte, error)
}

// Fetcher は URL・ローカルファイル・インラインのバイト列から元画像を取得します。
// 同じ URL への同時リクエストは1回にまとめ、取得結果は一定時間キャッシュします。
type Fetcher struct {
	httpClient  httpkit.Requester
	reader      remoteio.InputReader
	cache       *cache.Cache
	group       singleflight.Group
	loadTimeout time.Duration
	mu          sync.Mutex
	downloads   int
}

// NewFetcher は Fetcher を初期化します。
// httpClient が nil の場合は timeout で httpkit のクライアントを作り、ttl が0以下の場合は既定値を使います。
func NewFetcher(httpClient httpkit.Requester, timeout, ttl time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = defaultLoadTimeout
	}
	if httpClient == nil {
		httpClient = httpkit.New(timeout)
	}
	if ttl <= 0 {
		ttl = defaultCacheExpiration
	}
	return &Fetcher{
		httpClient:  httpClient,
		reader:      remoteio.NewUniversalInputReader(nil, nil),
		cache:       cache.New(ttl, cacheCleanupInterval),
		loadTimeout: timeout,
	}
}

// Fetch は ref の画像データを返します。
// 取得は呼び出し元ごとのキャンセルから切り離して共有し、待機中の各呼び出し元は自分の ctx だけで中断するのだ
func (f *Fetcher) Fetch(ctx context.Context, ref domain.ImageRef) ([]byte, error) {
	if len(ref.Data) > 0 {
		return ref.Data, nil
	}
	if ref.URL == "" {
		return nil, errors.New("image reference is empty")
	}

	if cached, ok := f.cache.Get(ref.URL); ok {
		if data, ok := cached.([]byte); ok {
			return data, nil
		}
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := f.group.DoChan(ref.URL, func() (interface{}, error) {
		// 待機中に他のゴルーチンが取得を終えている可能性があるため再確認
		if cached, ok := f.cache.Get(ref.URL); ok {
			return cached, nil
		}
		callCtx, cancel := context.WithTimeout(loadCtx, f.loadTimeout)
		defer cancel()

		data, err := f.load(callCtx, ref.URL)
		if err != nil {
			return nil, err
		}
		f.cache.SetDefault(ref.URL, data)
		return data, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}

	data, ok := res.Val.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected return type from singleflight: %T", res.Val)
	}
	slog.DebugContext(ctx, "Source image loaded", "url", ref.URL, "bytes", len(data), "shared", res.Shared)
	return data, nil
}

// Downloads はネットワーク・ファイルからの実際の読み込み回数を返します。
func (f *Fetcher) Downloads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.downloads
}

func (f *Fetcher) load(ctx context.Context, rawURL string) ([]byte, error) {
	f.mu.Lock()
	f.downloads++
	f.mu.Unlock()

	u, err := url.Parse(rawURL)
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		data, err := f.httpClient.FetchBytes(ctx, rawURL)
		if err != nil {
			return nil, fmt.Errorf("画像のダウンロードに失敗しました: %w", err)
		}
		return data, nil
	}

	path := rawURL
	if err == nil && u.Scheme == "file" {
		path = u.Path
	}
	rc, err := f.reader.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("画像ファイルの読み込みに失敗しました: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("画像ファイルの読み込みに失敗しました: %w", err)
	}
	return data, nil
}
