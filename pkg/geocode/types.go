package geocode

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shouni/go-chronolens-kit/pkg/domain"
)

// nominatimPlace は Nominatim 互換 API のワイヤ表現です。
// 緯度・経度は文字列で返ってくるため、受信後に数値へ変換します。
type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	// Error は /reverse が解決できなかったときにだけ入ります。
	Error string `json:"error"`
}

// Place はジオコーディングの解決結果です。
// Name は display_name を最初のカンマの手前で切り詰めた表示用の短縮名です。
type Place struct {
	Name        string             `json:"name"`
	DisplayName string             `json:"displayName"`
	Coordinates domain.Coordinates `json:"coordinates"`
}

// Location は Place をドメインの LocationData に変換します。
func (p *Place) Location() domain.LocationData {
	return domain.LocationData{Name: p.Name, Coordinates: p.Coordinates}
}

func (w *nominatimPlace) toPlace() (*Place, error) {
	lat, err := strconv.ParseFloat(w.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("緯度の解析に失敗しました (%q): %w", w.Lat, err)
	}
	lon, err := strconv.ParseFloat(w.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("経度の解析に失敗しました (%q): %w", w.Lon, err)
	}
	return &Place{
		Name:        shortName(w.DisplayName),
		DisplayName: w.DisplayName,
		Coordinates: domain.Coordinates{Lat: lat, Lon: lon},
	}, nil
}

// shortName は表示名を最初のカンマの手前で切り詰めます。
func shortName(displayName string) string {
	if i := strings.Index(displayName, ","); i >= 0 {
		displayName = displayName[:i]
	}
	return strings.TrimSpace(displayName)
}
