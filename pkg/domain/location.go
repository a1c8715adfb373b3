package domain

import "fmt"

// Coordinates は緯度・経度（度単位）の組です。
// 範囲チェックは行いません。地図や外部サービスから渡された値をそのまま保持します。
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// String は "28.6562, 77.2410" 形式の表示用文字列を返します。
func (c Coordinates) String() string {
	return fmt.Sprintf("%.4f, %.4f", c.Lat, c.Lon)
}

// LocationData は表示名と座標の組です。
// 地図クリック直後は座標だけが確定し、名前は後からリバースジオコーディングで
// 補完されるため、名前と座標が一時的に食い違うことを許容します。
type LocationData struct {
	Name        string      `json:"name"`
	Coordinates Coordinates `json:"coordinates"`
}

// Label は表示用ラベルを返します。名前が未解決の間は座標文字列で代用します。
func (l LocationData) Label() string {
	if l.Name != "" {
		return l.Name
	}
	return l.Coordinates.String()
}
