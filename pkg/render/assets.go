package render

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/shouni/go-gemini-client/gemini"
	"github.com/shouni/go-http-kit/httpkit"
	"github.com/shouni/go-remote-io/pkg/remoteio"
	"google.golang.org/genai"

	"github.com/shouni/go-chronolens-kit/pkg/imgutil"
)

// AssetCore は参照画像の取得と Gemini File API とのやり取りを担当します。
type AssetCore struct {
	aiClient   gemini.GenerativeModel
	reader     remoteio.InputReader
	httpClient httpkit.ClientInterface
	cache      Cacher
	expiration time.Duration
}

// NewAssetCore は依存関係を注入して AssetCore を初期化します。
func NewAssetCore(aiClient gemini.GenerativeModel, reader remoteio.InputReader, httpClient httpkit.ClientInterface, cache Cacher, cacheTTL time.Duration) (*AssetCore, error) {
	if aiClient == nil {
		return nil, fmt.Errorf("aiClient is required")
	}
	if reader == nil {
		return nil, fmt.Errorf("reader is required")
	}
	if httpClient == nil {
		return nil, fmt.Errorf("httpClient is required")
	}
	// cache は nil を許容（キャッシュなし動作）

	return &AssetCore{
		aiClient:   aiClient,
		reader:     reader,
		httpClient: httpClient,
		cache:      cache,
		expiration: cacheTTL,
	}, nil
}

// UploadReference は参照画像を Gemini File API にアップロードし、URI を返します。
// 同じ URI の再アップロードはキャッシュで抑止します。
func (a *AssetCore) UploadReference(ctx context.Context, fileURI string) (string, error) {
	cacheKeyURI := cacheKeyFileURI + fileURI
	if a.cache != nil {
		if val, ok := a.cache.Get(cacheKeyURI); ok {
			if uri, ok := val.(string); ok {
				return uri, nil
			}
		}
	}

	data, err := a.fetchImageData(ctx, fileURI)
	if err != nil {
		return "", err
	}

	finalData := data
	if UseImageCompression {
		if compressed, err := imgutil.CompressToJPEG(data, ImageCompressionQuality); err == nil {
			finalData = compressed
		}
	}

	mimeType := http.DetectContentType(finalData)
	displayName := filepath.Base(fileURI)

	uri, fileName, err := a.aiClient.UploadFile(ctx, finalData, mimeType, displayName)
	if err != nil {
		return "", fmt.Errorf("参照画像のアップロードに失敗しました: %w", err)
	}

	// URI（参照用）と Name（削除用）の両方をキャッシュ
	if a.cache != nil {
		a.cache.Set(cacheKeyURI, uri, a.expiration)
		a.cache.Set(cacheKeyFileName+fileURI, fileName, a.expiration)
	}

	return uri, nil
}

// ForgetReference はキャッシュされたファイル名を使って File API 上の実体を削除します。
func (a *AssetCore) ForgetReference(ctx context.Context, fileURI string) error {
	if a.cache != nil {
		if val, ok := a.cache.Get(cacheKeyFileName + fileURI); ok {
			if name, ok := val.(string); ok {
				// 削除 API はアップロード時に返るファイル名 (files/xxxx) を要求する
				return a.aiClient.DeleteFile(ctx, name)
			}
		}
	}

	// キャッシュミスした場合、URL 形式の fileURI では削除 API を叩けない
	return fmt.Errorf("削除対象のファイル名を特定できません（キャッシュ未登録）: %s", fileURI)
}

// PrepareImagePart は参照画像 URL から生成リクエストに添えるパーツを作ります。
// 失敗しても生成自体は続行できるため、警告を残して nil を返します。
func (a *AssetCore) PrepareImagePart(ctx context.Context, rawURL string) *genai.Part {
	if a.cache != nil {
		if val, ok := a.cache.Get(cacheKeyFileURI + rawURL); ok {
			if uri, ok := val.(string); ok {
				return &genai.Part{FileData: &genai.FileData{FileURI: uri}}
			}
		}
	}

	data, err := a.fetchImageData(ctx, rawURL)
	if err != nil {
		slog.WarnContext(ctx, "参照画像の取得に失敗したため無視します", "url", rawURL, "error", err)
		return nil
	}

	finalData := data
	if UseImageCompression {
		if compressed, err := imgutil.CompressToJPEG(data, ImageCompressionQuality); err == nil {
			finalData = compressed
		}
	}

	return a.toPart(finalData)
}

// fetchImageData は gs:// はリモートリーダー経由、http(s) は安全検証のうえ取得します。
func (a *AssetCore) fetchImageData(ctx context.Context, rawURL string) ([]byte, error) {
	if strings.HasPrefix(rawURL, "gs://") {
		rc, err := a.reader.Open(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}

	if safe, err := IsSafeURL(rawURL); err != nil || !safe {
		return nil, fmt.Errorf("安全ではないURLが指定されました: %w", err)
	}
	return a.httpClient.FetchBytes(ctx, rawURL)
}

func (a *AssetCore) toPart(data []byte) *genai.Part {
	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return nil
	}
	return &genai.Part{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}}
}
