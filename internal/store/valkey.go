// Package store はValkeyへの接続と低レベルアクセスを提供する。
package store

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/jeremyapple/netsapiens-dialbyname-directory/internal/config"
)

// ValkeyClient はValkey接続を保持するラッパー。
type ValkeyClient struct {
	client *redis.Client
}

// NewValkeyClient は新しいValkeyクライアントを生成する。
// 接続確認のためPINGを実行し、失敗した場合はエラーを返す。
func NewValkeyClient(cfg *config.Config) (*ValkeyClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.ValkeyAddr(),
		Password:     cfg.RedisPass,
		DB:           0,
		DialTimeout:  config.ValkeyConnectTimeout,
		ReadTimeout:  config.ValkeyCommandTimeout,
		WriteTimeout: config.ValkeyCommandTimeout,
		PoolSize:     config.ValkeyPoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), config.ValkeyConnectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &ValkeyClient{client: client}, nil
}

// NewValkeyClientFromRedis は既存のredis.Clientからラッパーを生成する。
// テストでminiredis接続を注入するために使用する。
func NewValkeyClientFromRedis(client *redis.Client) *ValkeyClient {
	return &ValkeyClient{client: client}
}

// Client は内部のredis.Clientを返す。
func (vc *ValkeyClient) Client() *redis.Client {
	return vc.client
}

// Close は接続を閉じる。
func (vc *ValkeyClient) Close() error {
	return vc.client.Close()
}
