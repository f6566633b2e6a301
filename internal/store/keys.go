package store

// Valkeyキープレフィックス
const (
	// KeyPrefixCache はディレクトリ検索結果キャッシュ（値はJSONレコード）
	KeyPrefixCache = "dbn:cache:"

	// KeyPrefixSession は通話セッション（値はハッシュ）
	KeyPrefixSession = "dbn:sess:"
)
