package scene

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/go-gemini-client/gemini"
	"google.golang.org/genai"

	"github.com/shouni/go-chronolens-kit/pkg/domain"
)

func testRequest() domain.GenerationRequest {
	return domain.GenerationRequest{
		Location: domain.LocationData{
			Name:        "Red Fort",
			Coordinates: domain.Coordinates{Lat: 28.6562, Lon: 77.2410},
		},
		Date:  "1947-08-15",
		Time:  "08:30",
		Style: domain.StyleJournalistic,
	}
}

func TestNewComposer(t *testing.T) {
	t.Run("aiClient が nil ならエラーになること", func(t *testing.T) {
		_, err := NewComposer(nil, "test-model")
		assert.Error(t, err)
	})

	t.Run("model が空ならエラーになること", func(t *testing.T) {
		_, err := NewComposer(&mockAIClient{}, "")
		assert.Error(t, err)
	})
}

func TestComposer_Compose(t *testing.T) {
	ctx := context.Background()

	t.Run("正常系: 描写と物語が返り、ペルソナ付きで呼ばれること", func(t *testing.T) {
		mock := &mockAIClient{
			generateFunc: func(ctx context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error) {
				return textResponse(`{"visualPrompt":"tricolour rising over red sandstone ramparts","story":"The first morning of independence."}`), nil
			},
		}
		c, err := NewComposer(mock, "test-model")
		require.NoError(t, err)

		vc, err := c.Compose(ctx, testRequest())
		require.NoError(t, err)

		assert.Equal(t, "tricolour rising over red sandstone ramparts", vc.Description)
		assert.Equal(t, "The first morning of independence.", vc.Story)

		assert.Equal(t, "test-model", mock.lastModel)
		assert.Equal(t, ScenePersona, mock.lastOpts.SystemPrompt)
		require.Len(t, mock.lastParts, 1)
		assert.Contains(t, mock.lastParts[0].Text, "Red Fort")
		assert.Contains(t, mock.lastParts[0].Text, "1947-08-15")
		assert.Contains(t, mock.lastParts[0].Text, "08:30")
		assert.Contains(t, mock.lastParts[0].Text, "Photojournalism")
	})

	t.Run("通信失敗はエラーとして上がること", func(t *testing.T) {
		mock := &mockAIClient{
			generateFunc: func(ctx context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error) {
				return nil, errors.New("503 unavailable")
			},
		}
		c, err := NewComposer(mock, "test-model")
		require.NoError(t, err)

		_, err = c.Compose(ctx, testRequest())
		require.Error(t, err)
		assert.ErrorContains(t, err, "情景解析の呼び出しに失敗しました")
	})

	t.Run("候補が空の応答はエラーになること", func(t *testing.T) {
		mock := &mockAIClient{
			generateFunc: func(ctx context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error) {
				return &gemini.Response{RawResponse: &genai.GenerateContentResponse{}}, nil
			},
		}
		c, err := NewComposer(mock, "test-model")
		require.NoError(t, err)

		_, err = c.Compose(ctx, testRequest())
		assert.Error(t, err)
	})

	t.Run("JSON でない応答は劣化して成功すること", func(t *testing.T) {
		mock := &mockAIClient{
			generateFunc: func(ctx context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error) {
				return textResponse("Soldiers line the walls under a monsoon sky."), nil
			},
		}
		c, err := NewComposer(mock, "test-model")
		require.NoError(t, err)

		vc, err := c.Compose(ctx, testRequest())
		require.NoError(t, err)
		assert.Equal(t, "Soldiers line the walls under a monsoon sky.", vc.Description)
		assert.Equal(t, FallbackStory, vc.Story)
	})
}

func TestBuildScenePrompt(t *testing.T) {
	t.Run("時刻を省略した場合は TIME 行が含まれないこと", func(t *testing.T) {
		req := testRequest()
		req.Time = ""
		prompt := BuildScenePrompt(req)
		assert.NotContains(t, prompt, "TIME OF DAY")
		assert.Contains(t, prompt, "28.6562, 77.2410")
	})
}
