package questionnaire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shouni/go-remote-io/pkg/remoteio"

	"github.com/shouni/go-liminal-kit/pkg/domain"
)

// DefaultStorePath は保存済みキャラクターマップの既定のファイル名です。
const DefaultStorePath = "character_map.json"

// Store はキャラクターマップをJSONファイルとして保存・読み込みします。
type Store struct {
	path   string
	reader remoteio.InputReader
	writer remoteio.OutputWriter
}

// NewStore は path を使う Store を返します。空なら DefaultStorePath です。
func NewStore(path string) *Store {
	if path == "" {
		path = DefaultStorePath
	}
	return &Store{
		path:   path,
		reader: remoteio.NewUniversalInputReader(nil, nil),
		writer: remoteio.NewUniversalIOWriter(nil, nil),
	}
}

// Path は保存先のパスを返します。
func (s *Store) Path() string {
	return s.path
}

// Exists は保存済みのマップがあるかどうかを返します。
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Save はマップを4スペースのインデント付きで上書き保存します。
func (s *Store) Save(ctx context.Context, cmap domain.CharacterMap) error {
	if err := cmap.Validate(); err != nil {
		return err
	}
	body, err := cmap.JSON()
	if err != nil {
		return err
	}
	if err := s.writer.Write(ctx, s.path, strings.NewReader(body+"\n"), "application/json"); err != nil {
		return fmt.Errorf("キャラクターマップの保存に失敗しました: %w", err)
	}
	return nil
}

// Load は保存済みのマップを読み込みます。
func (s *Store) Load(ctx context.Context) (domain.CharacterMap, error) {
	rc, err := s.reader.Open(ctx, s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("保存済みのキャラクターマップがありません (%s): %w", s.path, err)
		}
		return nil, fmt.Errorf("キャラクターマップの読み込みに失敗しました: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("キャラクターマップの読み込みに失敗しました: %w", err)
	}
	return domain.ParseCharacterMap(data)
}
