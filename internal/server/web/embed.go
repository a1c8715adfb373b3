// Package web は組み込みの Web UI（静的ファイル）を配信します。
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var assets embed.FS

// Handler は静的ファイルを配信するハンドラを返します。
// ルート ( / ) へのアクセスは index.html になります。
func Handler() http.Handler {
	sub, err := fs.Sub(assets, "static")
	if err != nil {
		// static はビルド時に埋め込まれるため、ここで失敗するのは構成ミス
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
