package config

import "time"

// Valkey接続設定
const (
	ValkeyConnectTimeout = 3 * time.Second
	ValkeyCommandTimeout = 2 * time.Second
	ValkeyPoolSize       = 10
)

// NetSapiens API接続設定
const (
	APIConnectTimeout = 2 * time.Second
	APIRequestTimeout = 10 * time.Second

	// ページネーション暴走防止の上限（100ページ × 1000件 = 最大10万ユーザー）
	MaxFetchPages = 100

	// APIの1リクエストあたり最大取得件数
	MaxAPIPageLimit = 1000
)

// Circuit Breaker設定
const (
	CBName             = "ns-api"
	CBMaxRequests      = 3
	CBInterval         = 10 * time.Second
	CBTimeout          = 30 * time.Second
	CBFailureThreshold = 5
)

// 通話セッション管理
const (
	// 1通話分のディレクトリ操作が収まる長さ。通話終了時はセッションが
	// 明示的にクリアされるため、これは放置されたセッションの回収用。
	CallSessionTTL = 30 * time.Minute
)

// ディレクトリ入力設定
const (
	MinGatherDigits = 2
	MaxGatherDigits = 10
	MaxMenuResults  = 9

	// Gatherの入力待ちタイムアウト（秒）
	GatherTimeoutSec = 10
)

// キャッシュ設定
const (
	// Valkeyキー自体のTTLはレコード内expiresの倍に設定する。
	// 期限判定はレコード内expiresで行い、キーTTLは削除漏れの保険。
	CacheKeyTTLFactor = 2
)

// サーバーシャットダウン設定
const (
	ShutdownTimeout = 5 * time.Second
)
