// Package main はキャッシュ・セッション管理TUIのエントリーポイント。
package main

import (
	"fmt"
	"os"

	"github.com/jeremyapple/netsapiens-dialbyname-directory/internal/admin"
	"github.com/jeremyapple/netsapiens-dialbyname-directory/internal/cache"
	"github.com/jeremyapple/netsapiens-dialbyname-directory/internal/config"
	"github.com/jeremyapple/netsapiens-dialbyname-directory/internal/session"
	"github.com/jeremyapple/netsapiens-dialbyname-directory/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	valkeyClient, err := store.NewValkeyClient(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect to Valkey (%s): %v\n", cfg.ValkeyAddr(), err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	resultCache := cache.New(valkeyClient, cfg.CacheTTL, cfg.CachePurgeChance)
	sessions := session.NewValkeyStore(valkeyClient)

	app := admin.NewApp(
		admin.NewCacheView(resultCache),
		admin.NewSessionView(sessions),
	)

	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "tui error: %v\n", err)
		os.Exit(1)
	}
}
