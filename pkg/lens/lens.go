package lens

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/shouni/go-chronolens-kit/pkg/apikey"
	"github.com/shouni/go-chronolens-kit/pkg/domain"
	"github.com/shouni/go-chronolens-kit/pkg/render"
)

// Composer は場所と日時を情景の言語表現に変換します。
type Composer interface {
	Compose(ctx context.Context, req domain.GenerationRequest) (*domain.VisualContext, error)
}

// Renderer は情景の言語表現から画像を合成します。
type Renderer interface {
	Render(ctx context.Context, req render.Request) (*render.Result, error)
}

// NameResolver は座標から地名を非同期に補完します。
type NameResolver interface {
	ReverseLookupAsync(ctx context.Context, coords domain.Coordinates, update func(name string))
}

// Lens は 2 段階の生成フロー（情景解析 → 画像合成）を束ねる窓口です。
// 同時に実行できる撮影は 1 件だけで、結果は完走したときにだけ置き換わります。
type Lens struct {
	keys     apikey.Source
	composer Composer
	renderer Renderer
	resolver NameResolver  // 任意。nil なら地名補完なし
	listener PhaseListener // 任意。nil なら通知なし

	busy atomic.Bool

	mu      sync.RWMutex
	phase   Phase
	result  *domain.GeneratedImage
	lastErr *Error
}

// New は依存関係を注入して Lens を初期化します。
func New(keys apikey.Source, composer Composer, renderer Renderer) (*Lens, error) {
	if keys == nil {
		return nil, fmt.Errorf("keys (apikey.Source) is required")
	}
	if composer == nil {
		return nil, fmt.Errorf("composer is required")
	}
	if renderer == nil {
		return nil, fmt.Errorf("renderer is required")
	}

	return &Lens{
		keys:     keys,
		composer: composer,
		renderer: renderer,
		phase:    PhaseIdle,
	}, nil
}

// SetNameResolver は座標からの地名補完を有効にします。
func (l *Lens) SetNameResolver(r NameResolver) {
	l.resolver = r
}

// SetPhaseListener は段階遷移の通知先を設定します。
func (l *Lens) SetPhaseListener(fn PhaseListener) {
	l.listener = fn
}

// Capture は 1 回の撮影を最後まで実行し、生成された画像を返します。
// 別の撮影が進行中の場合は CodeBusy で即座に失敗します。
// 途中で失敗しても直前の成功結果は保持されたままです。リトライは行いません。
func (l *Lens) Capture(ctx context.Context, req domain.GenerationRequest) (*domain.GeneratedImage, error) {
	if !l.busy.CompareAndSwap(false, true) {
		return nil, &Error{Code: CodeBusy, Phase: l.Phase()}
	}
	defer l.busy.Store(false)

	// 1. キーの確認。未設定なら一度だけ取得を促し、再確認する
	l.setPhase(PhaseCheckingKey)
	if !l.keys.HasKey() {
		if err := l.keys.RequestKey(ctx); err != nil {
			return nil, l.fail(CodeKeyRequired, PhaseCheckingKey, err)
		}
		if !l.keys.HasKey() {
			return nil, l.fail(CodeKeyRequired, PhaseCheckingKey, nil)
		}
	}

	// 2. 地名が空なら裏で補完を走らせる。完了を待たずに先へ進む
	var nameMu sync.Mutex
	resolvedName := req.Location.Name
	if resolvedName == "" && l.resolver != nil {
		l.resolver.ReverseLookupAsync(ctx, req.Location.Coordinates, func(name string) {
			nameMu.Lock()
			resolvedName = name
			nameMu.Unlock()
		})
	}

	// 3. 情景解析
	l.setPhase(PhaseAnalyzing)
	vc, err := l.composer.Compose(ctx, req)
	if err != nil {
		return nil, l.fail(CodeSceneFailed, PhaseAnalyzing, err)
	}

	// 4. 画像合成
	l.setPhase(PhaseRendering)
	rendered, err := l.renderer.Render(ctx, render.Request{
		Context:      vc,
		Style:        req.Style,
		ReferenceURL: req.ReferenceURL,
		Seed:         req.Seed,
	})
	if err != nil {
		return nil, l.fail(classifyRenderError(err), PhaseRendering, err)
	}

	// 5. 完走したときにだけ結果を組み立てて公開する
	location := req.Location
	nameMu.Lock()
	if location.Name == "" && resolvedName != "" {
		location.Name = resolvedName
	}
	nameMu.Unlock()

	img := &domain.GeneratedImage{
		ID:          uuid.NewString(),
		ImageURL:    rendered.Output.DataURL(),
		Description: vc.Description,
		Story:       vc.Story,
		PromptUsed:  rendered.Prompt,
		Style:       req.Style,
		Location:    location,
		CreatedAt:   time.Now(),
	}

	l.mu.Lock()
	l.phase = PhaseDone
	l.result = img
	l.lastErr = nil
	l.mu.Unlock()
	l.notify(PhaseDone)

	slog.InfoContext(ctx, "撮影が完了しました", "id", img.ID, "style", img.Style, "location", location.Label())
	return img, nil
}

// Phase は現在の段階を返します。
func (l *Lens) Phase() Phase {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.phase
}

// Busy は撮影が進行中かどうかを返します。
func (l *Lens) Busy() bool {
	return l.busy.Load()
}

// Result は直近に完走した撮影の結果を返します。まだなければ nil です。
func (l *Lens) Result() *domain.GeneratedImage {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.result
}

// Err は直近の失敗を返します。直近の撮影が成功していれば nil です。
func (l *Lens) Err() *Error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lastErr
}

func (l *Lens) setPhase(p Phase) {
	l.mu.Lock()
	l.phase = p
	l.mu.Unlock()
	l.notify(p)
}

func (l *Lens) notify(p Phase) {
	if l.listener != nil {
		l.listener(p)
	}
}

// fail は失敗を記録して Failed へ遷移させます。保持中の結果には触れません。
func (l *Lens) fail(code Code, at Phase, cause error) error {
	capErr := &Error{Code: code, Phase: at, Err: cause}

	l.mu.Lock()
	l.phase = PhaseFailed
	l.lastErr = capErr
	l.mu.Unlock()
	l.notify(PhaseFailed)

	slog.Warn("撮影に失敗しました", "code", code, "phase", at, "error", cause)
	return capErr
}

// classifyRenderError は合成層のエラーを機械可読コードへ写像します。
func classifyRenderError(err error) Code {
	switch {
	case errors.Is(err, render.ErrKeyRejected):
		return CodeKeyRejected
	case errors.Is(err, render.ErrNoImage):
		return CodeNoImage
	default:
		return CodeRenderFailed
	}
}
