// Package session は通話ごとのダイヤル操作状態の保持を提供する。
//
// Webhookは呼び出しごとに独立したステートレスなリクエストとして届くため、
// 通話IDをキーに状態を外部ストアへ退避し、次のイベントで復元する。
package session

import "github.com/jeremyapple/netsapiens-dialbyname-directory/internal/model"

// State は通話セッションの状態
type State string

const (
	// StateInitial は初回イベント待ち
	StateInitial State = "initial"
	// StateSearching は名前の数字入力を収集中
	StateSearching State = "searching"
	// StateSelecting は候補メニューから選択中
	StateSelecting State = "selecting"
)

// Call は1通話分のディレクトリ操作状態。
type Call struct {
	State             State
	AccumulatedDigits string
	AllMatches        []model.Entry
	CurrentPage       int

	// ReturnTo は退出時の戻り先。通話中に一度だけ解決してキャッシュする。
	ReturnTo        string
	ReturnToChecked bool
}

// NewCall は初期状態のセッションを生成する。
func NewCall() *Call {
	return &Call{State: StateInitial}
}
