package presets

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/shouni/go-remote-io/pkg/remoteio"

	"github.com/shouni/go-chronolens-kit/pkg/domain"
)

//go:embed catalog.json
var catalogJSON []byte

// Preset は名前付きの撮影リクエスト一式です。
type Preset struct {
	ID      string                   `json:"id"`
	Title   string                   `json:"title"`
	Note    string                   `json:"note,omitempty"`
	Request domain.GenerationRequest `json:"request"`
}

var (
	catalogOnce sync.Once
	catalog     []Preset
	catalogErr  error
)

// Catalog は組み込みのプリセット一覧を返します。
func Catalog() ([]Preset, error) {
	catalogOnce.Do(func() {
		catalog, catalogErr = decodePresets(catalogJSON)
		if catalogErr != nil {
			catalogErr = fmt.Errorf("組み込みカタログの読み込みに失敗しました: %w", catalogErr)
		}
	})
	return catalog, catalogErr
}

// Find は ID で組み込みプリセットを検索します。
func Find(id string) (*Preset, error) {
	all, err := Catalog()
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			p := all[i]
			return &p, nil
		}
	}
	return nil, fmt.Errorf("プリセット %q が見つかりません", id)
}

// LoadFile はローカルパスや GCS URI からユーザー定義のプリセット一覧を読み込みます。
func LoadFile(ctx context.Context, reader remoteio.InputReader, path string) ([]Preset, error) {
	rc, err := reader.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("プリセットファイルのオープンに失敗しました (%s): %w", path, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("プリセットファイルの読み込みに失敗しました (%s): %w", path, err)
	}
	return decodePresets(data)
}

func decodePresets(data []byte) ([]Preset, error) {
	var out []Preset
	if err := sonic.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("プリセット JSON の解析に失敗しました: %w", err)
	}

	for i := range out {
		p := &out[i]
		if p.ID == "" {
			return nil, fmt.Errorf("%d 番目のプリセットに id がありません", i)
		}
		if p.Request.Date == "" {
			return nil, fmt.Errorf("プリセット %q に date がありません", p.ID)
		}
		if p.Request.Style == "" {
			p.Request.Style = domain.StyleRealistic
		} else if !p.Request.Style.Valid() {
			return nil, fmt.Errorf("プリセット %q のスタイルが不正です: %q", p.ID, p.Request.Style)
		}
	}
	return out, nil
}
