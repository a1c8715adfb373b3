package domain

// GenerationRequest は 1 回の撮影（オーケストレーション実行）の入力です。
// Date は自由形式のテキストで、歴史上・架空を問わず未検証のまま受け付けます
// （"1947-08-15" も "circa 2560 BC" も有効です）。
type GenerationRequest struct {
	Location LocationData `json:"location"`
	Date     string       `json:"date"`
	Time     string       `json:"time,omitempty"`
	Style    PhotoStyle   `json:"style"`

	// ReferenceURL は現代の参考写真（http(s):// または gs://）です。
	// 構図の手がかりとして画像生成に添付されます。空なら未使用です。
	ReferenceURL string `json:"referenceUrl,omitempty"`
	// Seed は nil でランダム、値指定で再現可能な生成になります。
	Seed *int64 `json:"seed,omitempty"`
}

// VisualContext はテキスト生成ステップの出力で、画像生成ステップだけが消費する
// 中間生成物です。永続化されません。JSON タグは生成モデルへ要求する
// 2 フィールドスキーマそのものです。
type VisualContext struct {
	Description string `json:"visualPrompt"`
	Story       string `json:"story"`
}
