package scene

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/shouni/go-chronolens-kit/pkg/domain"
)

// FallbackStory は物語が復元できなかったときに添える定型文です。
const FallbackStory = "The story of this moment has been lost to time, but the scene remains."

var jsonBlockRegex = regexp.MustCompile("(?s)```(?:json)?\\s*(.*\\S)\\s*```")

// parseVisualContext は AI 応答のテキストから VisualContext を復元します。
// 構造化出力が崩れていても応答全文を描写として使い、決してエラーにしません。
func parseVisualContext(raw string) *domain.VisualContext {
	trimmed := strings.TrimSpace(raw)
	rawJSON := extractJSONBlock(trimmed)

	var vc domain.VisualContext
	if err := json.Unmarshal([]byte(rawJSON), &vc); err == nil && vc.Description != "" {
		if vc.Story == "" {
			vc.Story = FallbackStory
		}
		return &vc
	}

	// 型崩れした JSON でもキーが拾えるなら救済する
	parsed := gjson.Parse(rawJSON)
	if desc := strings.TrimSpace(parsed.Get("visualPrompt").String()); desc != "" {
		story := strings.TrimSpace(parsed.Get("story").String())
		if story == "" {
			story = FallbackStory
		}
		return &domain.VisualContext{Description: desc, Story: story}
	}

	return &domain.VisualContext{Description: trimmed, Story: FallbackStory}
}

// extractJSONBlock はコードフェンスや前後の文章に包まれた JSON 本体を取り出します。
func extractJSONBlock(raw string) string {
	if matches := jsonBlockRegex.FindStringSubmatch(raw); len(matches) > 1 {
		return matches[1]
	}

	first := strings.Index(raw, "{")
	last := strings.LastIndex(raw, "}")
	if first != -1 && last != -1 && last > first {
		return raw[first : last+1]
	}
	return raw
}
