package render

import (
	"fmt"
	"strings"

	"github.com/shouni/go-chronolens-kit/pkg/domain"
)

// QualitySuffix は全スタイル共通で付与する品質修飾子です。
const QualitySuffix = "ultra-detailed, historically accurate architecture, clothing and atmosphere, natural period-correct lighting, masterpiece quality, high resolution"

// BuildPrompt は情景描写・画風ラベル・品質修飾子を 1 本の生成プロンプトに束ねます。
func BuildPrompt(description string, style domain.PhotoStyle) string {
	return fmt.Sprintf("%s, in the style of %s, %s",
		strings.TrimSpace(description), style.Label(), QualitySuffix)
}
