package domain

import "time"

// GeneratedImage は 1 回の撮影が成功したときの最終成果物です。
// 実行ごとに新しく作られ、メモリ上にのみ保持されます。次の実行が成功すると
// 置き換えられ、失敗した場合は直前の成果物がそのまま残ります。
type GeneratedImage struct {
	// ID は実行ごとに採番される UUID です。
	ID string `json:"id"`
	// ImageURL は data:image/...;base64, 形式の埋め込み画像参照です。
	ImageURL string `json:"imageUrl"`
	// Description はシーン合成が生成した視覚描写です。
	Description string `json:"description"`
	// Story は同じ実行で生成された短い物語です。
	Story string `json:"story"`
	// PromptUsed は画像モデルへ実際に送信したプロンプト全文です。
	PromptUsed string `json:"promptUsed"`

	Style     PhotoStyle   `json:"style"`
	Location  LocationData `json:"location"`
	CreatedAt time.Time    `json:"createdAt"`
}
