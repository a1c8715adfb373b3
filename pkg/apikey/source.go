// Package apikey は生成 API キーの選択状態を扱うコラボレータを提供します。
// オーケストレータにはこの Source を依存として注入します。グローバル参照は
// 使いません。
package apikey

import (
	"context"
	"sync"
)

// Source はキー選択コラボレータの契約です。
// 利用側は HasKey を確認し、未選択なら RequestKey を一度だけ呼んでから
// 再確認します。それでも未選択ならキー必須エラーとして扱います。
type Source interface {
	// HasKey は利用可能なキーが選択済みかどうかを返します。
	HasKey() bool
	// RequestKey はキー選択フロー（ピッカー）を起動します。
	// 対話手段を持たない実装は何もせず nil を返して構いません。
	RequestKey(ctx context.Context) error
	// Key は現在のキーを返します。未選択なら空文字です。
	// 呼び出し側はこの値をログに残してはいけません。
	Key() string
}

// Static は環境変数やフラグから渡された固定キーを保持する Source です。
// CLI 実行で使います。ピッカーは存在しないため RequestKey は何もしません。
type Static struct {
	key string
}

// NewStatic は固定キーの Source を返します。key は空でも構いません。
func NewStatic(key string) *Static {
	return &Static{key: key}
}

func (s *Static) HasKey() bool {
	return s.key != ""
}

func (s *Static) RequestKey(ctx context.Context) error {
	return nil
}

func (s *Static) Key() string {
	return s.key
}

// Session はサーバ実行中に差し替え可能なキー保持です。
// Web UI のキーダイアログが Set/Clear を呼びます。プロセス内にのみ保持し、
// どこにも永続化しません。
type Session struct {
	mu  sync.RWMutex
	key string
}

// NewSession は未選択状態の Session を返します。
func NewSession() *Session {
	return &Session{}
}

// Set はキーを差し替えます。
func (s *Session) Set(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.key = key
}

// Clear はキーを破棄し、未選択状態に戻します。
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.key = ""
}

func (s *Session) HasKey() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.key != ""
}

// RequestKey はピッカーを起動できません。ダイアログ表示は UI 側の責務で、
// サーバはコード key_required を返して選択を促します。
func (s *Session) RequestKey(ctx context.Context) error {
	return nil
}

func (s *Session) Key() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.key
}
