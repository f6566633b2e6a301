// Package main はダイヤルバイネームWebhookサーバーのエントリーポイント。
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jeremyapple/netsapiens-dialbyname-directory/internal/cache"
	"github.com/jeremyapple/netsapiens-dialbyname-directory/internal/config"
	"github.com/jeremyapple/netsapiens-dialbyname-directory/internal/nsapi"
	"github.com/jeremyapple/netsapiens-dialbyname-directory/internal/server"
	"github.com/jeremyapple/netsapiens-dialbyname-directory/internal/session"
	"github.com/jeremyapple/netsapiens-dialbyname-directory/internal/store"
)

func main() {
	// 1. 設定読み込み
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// 2. ロガー初期化
	initLogger(cfg)

	slog.Info("starting webresponder",
		"listen_addr", cfg.ListenAddr,
		"log_level", cfg.LogLevel,
		"cache_enabled", cfg.CacheEnabled,
	)

	// 3. Valkey接続
	valkeyClient, err := store.NewValkeyClient(cfg)
	if err != nil {
		slog.Error("failed to connect to Valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	slog.Info("connected to Valkey", "addr", cfg.ValkeyAddr())

	// 4. 依存オブジェクト生成
	source := nsapi.NewClient(cfg)
	sessions := session.NewValkeyStore(valkeyClient)

	var resultCache *cache.Cache
	if cfg.CacheEnabled {
		resultCache = cache.New(valkeyClient, cfg.CacheTTL, cfg.CachePurgeChance)
	} else {
		slog.Warn("directory cache disabled, every call hits the api")
	}

	handler := server.NewDirectoryHandler(cfg, source, resultCache, sessions)

	// 5. サーバー起動
	srv := server.New(cfg, handler)

	// 6. Graceful Shutdown設定
	go func() {
		if err := srv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// 7. シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("server stopped")
}

// initLogger はロガーを初期化する。
func initLogger(cfg *config.Config) {
	level := slog.LevelInfo
	switch strings.ToUpper(cfg.LogLevel) {
	case "DEBUG":
		level = slog.LevelDebug
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := slog.NewJSONHandler(os.Stdout, opts)
	logger := slog.New(handler).With("app", "webresponder")
	slog.SetDefault(logger)
}
