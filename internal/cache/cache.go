// Package cache はディレクトリ検索結果のTTL付きキャッシュを提供する。
//
// 各レコードは自身の有効期限エポックを持ち、読み出し時に期限切れなら
// その場で削除してミス扱いにする（遅延削除）。Valkeyキー自体のTTLは
// 取りこぼし対策のバックストップとしてキャッシュTTLの2倍に設定する。
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jeremyapple/netsapiens-dialbyname-directory/internal/config"
	"github.com/jeremyapple/netsapiens-dialbyname-directory/internal/model"
	"github.com/jeremyapple/netsapiens-dialbyname-directory/internal/store"
)

// record はValkeyに保存するキャッシュレコード。
type record struct {
	Fingerprint string        `json:"fingerprint"`
	Expires     int64         `json:"expires"`
	Value       []model.Entry `json:"value"`
}

// Stats はキャッシュの統計情報。
type Stats struct {
	Total   int
	Expired int
}

// Info は管理用のキャッシュエントリ概要。
type Info struct {
	Key         string
	Fingerprint string
	Entries     int
	Expires     time.Time
}

// Cache はValkeyをバックエンドとする検索結果キャッシュ。
type Cache struct {
	vc          *store.ValkeyClient
	ttl         time.Duration
	purgeChance int
}

// New は新しいCacheを生成する。
// purgeChance は確率的パージの分母（N回に1回、0以下で無効）。
func New(vc *store.ValkeyClient, ttl time.Duration, purgeChance int) *Cache {
	return &Cache{vc: vc, ttl: ttl, purgeChance: purgeChance}
}

// Get はフィンガープリントに対応するキャッシュを取得する。
// レコード自身の有効期限を過ぎていた場合は削除してミスとして返す。
func (c *Cache) Get(ctx context.Context, fingerprint string) ([]model.Entry, bool, error) {
	key := store.KeyPrefixCache + hashKey(fingerprint)

	data, err := c.vc.Client().Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		// 壊れたレコードは消してミス扱い
		_ = c.vc.Client().Del(ctx, key).Err()
		return nil, false, nil
	}

	if rec.Expires < time.Now().Unix() {
		_ = c.vc.Client().Del(ctx, key).Err()
		slog.Debug("cache record expired",
			"event_id", "CACHE_EXPIRED",
			"fingerprint", fingerprint,
		)
		return nil, false, nil
	}

	return rec.Value, true, nil
}

// Set は検索結果をキャッシュに保存する。
func (c *Cache) Set(ctx context.Context, fingerprint string, entries []model.Entry) error {
	key := store.KeyPrefixCache + hashKey(fingerprint)

	rec := record{
		Fingerprint: fingerprint,
		Expires:     time.Now().Add(c.ttl).Unix(),
		Value:       entries,
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	return c.vc.Client().Set(ctx, key, data, c.ttl*config.CacheKeyTTLFactor).Err()
}

// Clear は単一クエリのキャッシュを削除する。
func (c *Cache) Clear(ctx context.Context, fingerprint string) error {
	key := store.KeyPrefixCache + hashKey(fingerprint)
	return c.vc.Client().Del(ctx, key).Err()
}

// ClearAll は全キャッシュレコードを削除し、削除件数を返す。
func (c *Cache) ClearAll(ctx context.Context) (int, error) {
	keys, err := c.scanKeys(ctx)
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}
	if err := c.vc.Client().Del(ctx, keys...).Err(); err != nil {
		return 0, err
	}
	return len(keys), nil
}

// PurgeExpired は期限切れレコードのみを削除し、削除件数を返す。
func (c *Cache) PurgeExpired(ctx context.Context) (int, error) {
	keys, err := c.scanKeys(ctx)
	if err != nil {
		return 0, err
	}

	now := time.Now().Unix()
	purged := 0
	for _, key := range keys {
		data, err := c.vc.Client().Get(ctx, key).Bytes()
		if err != nil {
			continue
		}
		var rec record
		if err := json.Unmarshal(data, &rec); err != nil || rec.Expires < now {
			if delErr := c.vc.Client().Del(ctx, key).Err(); delErr == nil {
				purged++
			}
		}
	}
	return purged, nil
}

// MaybePurge は1/purgeChanceの確率で期限切れレコードのパージを実行する。
// リクエスト処理のついでに呼び、溜まった期限切れレコードを少しずつ掃除する。
func (c *Cache) MaybePurge(ctx context.Context) {
	if c.purgeChance <= 0 {
		return
	}
	if rand.IntN(c.purgeChance) != 0 {
		return
	}

	purged, err := c.PurgeExpired(ctx)
	if err != nil {
		slog.Warn("probabilistic cache purge failed",
			"event_id", "CACHE_PURGE_ERR",
			"error", err.Error(),
		)
		return
	}
	if purged > 0 {
		slog.Info("probabilistic cache purge",
			"event_id", "CACHE_PURGE",
			"purged", purged,
		)
	}
}

// Stats は全レコード数と期限切れレコード数を返す。
func (c *Cache) Stats(ctx context.Context) (Stats, error) {
	infos, err := c.List(ctx)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{Total: len(infos)}
	now := time.Now()
	for _, info := range infos {
		if info.Expires.Before(now) {
			stats.Expired++
		}
	}
	return stats, nil
}

// List は全キャッシュレコードの概要を返す（管理用）。
func (c *Cache) List(ctx context.Context) ([]Info, error) {
	keys, err := c.scanKeys(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]Info, 0, len(keys))
	for _, key := range keys {
		data, err := c.vc.Client().Get(ctx, key).Bytes()
		if err != nil {
			continue
		}
		var rec record
		if err := json.Unmarshal(data, &rec); err != nil {
			continue
		}
		infos = append(infos, Info{
			Key:         key,
			Fingerprint: rec.Fingerprint,
			Entries:     len(rec.Value),
			Expires:     time.Unix(rec.Expires, 0),
		})
	}
	return infos, nil
}

// scanKeys はキャッシュプレフィックス配下の全キーをSCANで収集する。
func (c *Cache) scanKeys(ctx context.Context) ([]string, error) {
	var keys []string
	var cursor uint64
	for {
		batch, next, err := c.vc.Client().Scan(ctx, cursor, store.KeyPrefixCache+"*", 100).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		if next == 0 {
			return keys, nil
		}
		cursor = next
	}
}
