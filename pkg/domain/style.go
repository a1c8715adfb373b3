package domain

import "fmt"

// PhotoStyle は生成時の写真表現スタイルです。7種類の固定値のみを許可します。
type PhotoStyle string

const (
	StyleRealistic    PhotoStyle = "realistic"
	StyleStreet       PhotoStyle = "street"
	StylePortrait     PhotoStyle = "portrait"
	StyleVintage      PhotoStyle = "vintage"
	StyleCinematic    PhotoStyle = "cinematic"
	StyleJournalistic PhotoStyle = "journalistic"
	StylePainting     PhotoStyle = "painting"
)

// styleLabels はプロンプトへ注入するスタイルラベルの対応表です。
var styleLabels = map[PhotoStyle]string{
	StyleRealistic:    "Photorealistic",
	StyleStreet:       "Street Photography",
	StylePortrait:     "Environmental Portrait",
	StyleVintage:      "Vintage Film Photography",
	StyleCinematic:    "Cinematic Still",
	StyleJournalistic: "Photojournalism",
	StylePainting:     "Classical Oil Painting",
}

// Styles は定義順のスタイル一覧を返します。UI の選択肢やバッチ生成に使います。
func Styles() []PhotoStyle {
	return []PhotoStyle{
		StyleRealistic,
		StyleStreet,
		StylePortrait,
		StyleVintage,
		StyleCinematic,
		StyleJournalistic,
		StylePainting,
	}
}

// Valid は定義済みスタイルかどうかを返します。
func (s PhotoStyle) Valid() bool {
	_, ok := styleLabels[s]
	return ok
}

// Label は画像プロンプトに埋め込む英語ラベルを返します。
// 未定義スタイルには realistic のラベルで代用します。
func (s PhotoStyle) Label() string {
	if label, ok := styleLabels[s]; ok {
		return label
	}
	return styleLabels[StyleRealistic]
}

// ParseStyle は文字列をスタイルに変換します。空文字は realistic に正規化します。
func ParseStyle(s string) (PhotoStyle, error) {
	if s == "" {
		return StyleRealistic, nil
	}
	style := PhotoStyle(s)
	if !style.Valid() {
		return "", fmt.Errorf("未知のスタイルです: %q", s)
	}
	return style, nil
}
