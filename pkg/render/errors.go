package render

import (
	"errors"
	"net/http"

	"google.golang.org/genai"
)

// ErrNoImage は応答に画像データが 1 件も含まれていなかったことを示します。
var ErrNoImage = errors.New("応答に画像データが含まれていません")

// ErrKeyRejected は API キーがサーバー側で拒否されたことを示します。
// 呼び出し側はキーの再設定を促してください。
var ErrKeyRejected = errors.New("API キーが拒否されました")

// isKeyRejection は構造化エラーコードだけを見てキー起因の失敗かどうかを判定します。
// メッセージ文字列には依存しません。
func isKeyRejection(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return isRejectedCode(apiErr.Code)
	}

	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return isRejectedCode(apiErrPtr.Code)
	}
	return false
}

// isRejectedCode は鍵の再設定で回復しうる HTTP コードかどうかを返します。
// 404 は参照していたキー実体が消えた場合に返ります。
func isRejectedCode(code int) bool {
	return code == http.StatusForbidden || code == http.StatusNotFound
}
