package scene

import (
	"fmt"
	"strings"

	"github.com/shouni/go-chronolens-kit/pkg/domain"
)

// ScenePersona は時代考証に忠実な情景を厳密な JSON で返させるシステムプロンプトです。
const ScenePersona = `You are a historical scene director with deep knowledge of world history, architecture, weather and daily life.
Given a place, a moment in time and a photographic style, reconstruct what a camera standing at that spot would have captured.

### OUTPUT RULES ###
- Respond with ONLY a single JSON object. No prose, no markdown fences, no commentary.
- The object MUST contain exactly two string keys:
  - "visualPrompt": a rich visual description of the scene for an image generation model. Name concrete subjects, architecture, light, crowds, era-correct clothing and vehicles.
  - "story": a short evocative narrative (3-5 sentences) of what is happening at this place at this moment.
- Never introduce anachronisms. If the date is ambiguous, choose the most historically plausible reading.`

// BuildScenePrompt は撮影リクエストから情景解析用のユーザープロンプトを組み立てます。
// 時刻は任意入力なので、空のときは行ごと省略します。
func BuildScenePrompt(req domain.GenerationRequest) string {
	var b strings.Builder
	b.WriteString("# SCENE RECONSTRUCTION REQUEST\n")
	fmt.Fprintf(&b, "- LOCATION: %s\n", req.Location.Label())
	fmt.Fprintf(&b, "- COORDINATES: %s\n", req.Location.Coordinates.String())
	fmt.Fprintf(&b, "- DATE: %s\n", req.Date)
	if req.Time != "" {
		fmt.Fprintf(&b, "- TIME OF DAY: %s\n", req.Time)
	}
	fmt.Fprintf(&b, "- PHOTOGRAPHIC STYLE: %s\n", req.Style.Label())
	b.WriteString("\nDescribe the scene exactly as it would have appeared at that moment.")
	return b.String()
}
