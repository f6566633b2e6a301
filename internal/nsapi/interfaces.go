package nsapi

import "context"

// UserSource はユーザーディレクトリAPIとの通信インターフェースを定義する
type UserSource interface {
	// FetchUsers はドメインの全ユーザーをページネーションで取得する。
	// site/departmentは空文字列でフィルタなし。
	// 1ページ目の失敗はエラー、2ページ目以降の失敗は取得済み分を返す。
	FetchUsers(ctx context.Context, domain, site, department string) ([]RawUser, error)

	// GetUser は単一ユーザーの情報を取得する
	GetUser(ctx context.Context, domain, user string) (*RawUser, error)

	// IsAutoAttendant はユーザーがシステムオートアテンダントかどうかを判定する。
	// 取得に失敗した場合はエラーではなくfalseを返す。
	IsAutoAttendant(ctx context.Context, domain, user string) bool
}
