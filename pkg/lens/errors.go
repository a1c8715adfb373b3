package lens

import (
	"errors"
	"fmt"
)

// Code は撮影失敗の機械可読な分類です。
// 呼び出し側はメッセージ文字列ではなく、この値で分岐してください。
type Code string

const (
	// CodeBusy は別の撮影が進行中だったことを示します。
	CodeBusy Code = "busy"
	// CodeKeyRequired は API キーが未設定のまま撮影しようとしたことを示します。
	CodeKeyRequired Code = "key_required"
	// CodeKeyRejected は API キーがサーバー側で拒否されたことを示します。
	CodeKeyRejected Code = "key_rejected"
	// CodeSceneFailed は情景解析の呼び出しに失敗したことを示します。
	CodeSceneFailed Code = "scene_failed"
	// CodeNoImage は画像モデルが画像を 1 枚も返さなかったことを示します。
	CodeNoImage Code = "no_image"
	// CodeRenderFailed は画像合成のその他の失敗を示します。
	CodeRenderFailed Code = "render_failed"
)

// Error は失敗した段階と分類コードを持つ撮影エラーです。
type Error struct {
	Code  Code
	Phase Phase // 失敗した時点の段階
	Err   error // 原因。ない場合は nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("capture failed (%s at %s): %v", e.Code, e.Phase, e.Err)
	}
	return fmt.Sprintf("capture failed (%s at %s)", e.Code, e.Phase)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf は err から撮影エラーの分類コードを取り出します。
// 撮影エラーでなければ空文字を返します。
func CodeOf(err error) Code {
	var capErr *Error
	if errors.As(err, &capErr) && capErr != nil {
		return capErr.Code
	}
	return ""
}
