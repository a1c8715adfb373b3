package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/shouni/go-chronolens-kit/internal/metrics"
	"github.com/shouni/go-chronolens-kit/pkg/domain"
	"github.com/shouni/go-chronolens-kit/pkg/geocode"
	"github.com/shouni/go-chronolens-kit/pkg/lens"
	"github.com/shouni/go-chronolens-kit/pkg/presets"
)

// apiError は JSON API が返すエラーの共通形式です。
// Code は機械可読な分類で、UI はこの値で分岐します。
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type keyRequest struct {
	APIKey string `json:"apiKey"`
}

type styleInfo struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type reverseResponse struct {
	Name string `json:"name"`
}

type keyStatusResponse struct {
	Selected bool `json:"selected"`
}

type statusResponse struct {
	Phase  lens.Phase             `json:"phase"`
	Busy   bool                   `json:"busy"`
	HasKey bool                   `json:"hasKey"`
	Result *domain.GeneratedImage `json:"result,omitempty"`
	Error  *apiError              `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := sonic.ConfigDefault.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("レスポンスの書き込みに失敗しました", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, apiError{Code: code, Message: message})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStyles(w http.ResponseWriter, r *http.Request) {
	all := domain.Styles()
	list := make([]styleInfo, 0, len(all))
	for _, st := range all {
		list = append(list, styleInfo{ID: string(st), Label: st.Label()})
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	list, err := presets.Catalog()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "presets_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGeocode(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "クエリ q は必須です")
		return
	}

	place, err := s.geocoder.Forward(r.Context(), query)
	if errors.Is(err, geocode.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "該当する場所が見つかりませんでした")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadGateway, "geocode_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, place)
}

func (s *Server) handleReverse(w http.ResponseWriter, r *http.Request) {
	lat, latErr := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, lonErr := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if latErr != nil || lonErr != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "lat と lon は数値で指定してください")
		return
	}

	// 逆引きはベストエフォート。解決できなければ空文字を返します。
	name := s.geocoder.ReverseLookup(r.Context(), domain.Coordinates{Lat: lat, Lon: lon})
	writeJSON(w, http.StatusOK, reverseResponse{Name: name})
}

// handleKeyStatus は鍵が登録済みかどうかだけを返します。鍵の値は返しません。
func (s *Server) handleKeyStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, keyStatusResponse{Selected: s.session.HasKey()})
}

// handleSetKey は API キーを登録し、撮影一式を組み立て直します。
// キーの値はログにもエラーメッセージにも残しません。
func (s *Server) handleSetKey(w http.ResponseWriter, r *http.Request) {
	var req keyRequest
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", fmt.Sprintf("リクエストの解析に失敗しました: %s", err))
		return
	}
	key := strings.TrimSpace(req.APIKey)
	if key == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "apiKey は必須です")
		return
	}

	cam, err := s.factory(r.Context(), key)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "key_setup_failed", "撮影コンポーネントの初期化に失敗しました")
		return
	}

	s.session.Set(key)
	s.setCamera(cam)
	slog.Info("API キーを登録しました")
	w.WriteHeader(http.StatusNoContent)
}

// handleClearKey はキーを破棄し、キー未登録状態に戻します。
func (s *Server) handleClearKey(w http.ResponseWriter, r *http.Request) {
	s.session.Clear()
	s.setCamera(nil)
	slog.Info("API キーを破棄しました")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	cam := s.currentCamera()
	if cam == nil {
		writeError(w, http.StatusUnauthorized, string(lens.CodeKeyRequired), "API キーが登録されていません")
		return
	}

	var req domain.GenerationRequest
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", fmt.Sprintf("リクエストの解析に失敗しました: %s", err))
		return
	}
	if err := validateCapture(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	start := time.Now()
	img, err := cam.Capture(r.Context(), req)
	if err != nil {
		code := lens.CodeOf(err)
		metrics.CaptureTotal(string(req.Style), string(code))
		writeError(w, statusForCode(code), string(code), err.Error())
		return
	}

	metrics.CaptureTotal(string(req.Style), "ok")
	metrics.CaptureDuration(string(req.Style), time.Since(start))
	writeJSON(w, http.StatusOK, img)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	cam := s.currentCamera()
	if cam == nil {
		writeJSON(w, http.StatusOK, statusResponse{
			Phase:  lens.PhaseIdle,
			HasKey: s.session.HasKey(),
		})
		return
	}

	st := statusResponse{
		Phase:  cam.Phase(),
		Busy:   cam.Busy(),
		HasKey: s.session.HasKey(),
		Result: cam.Result(),
	}
	if lastErr := cam.Err(); lastErr != nil {
		st.Error = &apiError{Code: string(lastErr.Code), Message: lastErr.Error()}
	}
	writeJSON(w, http.StatusOK, st)
}

// validateCapture は撮影リクエストの必須項目とスタイルを検証します。
// スタイルは正規化して書き戻します（未指定は realistic）。
func validateCapture(req *domain.GenerationRequest) error {
	if req.Location.Name == "" && req.Location.Coordinates == (domain.Coordinates{}) {
		return fmt.Errorf("location は必須です")
	}
	if strings.TrimSpace(req.Date) == "" {
		return fmt.Errorf("date は必須です")
	}
	style, err := domain.ParseStyle(string(req.Style))
	if err != nil {
		return err
	}
	req.Style = style
	return nil
}

// statusForCode は撮影エラーの分類コードを HTTP ステータスへ割り当てます。
func statusForCode(code lens.Code) int {
	switch code {
	case lens.CodeBusy:
		return http.StatusConflict
	case lens.CodeKeyRequired, lens.CodeKeyRejected:
		return http.StatusUnauthorized
	case lens.CodeSceneFailed, lens.CodeNoImage, lens.CodeRenderFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
