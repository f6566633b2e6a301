package server

import "github.com/gin-gonic/gin"

// SetupRouter はルーティングを設定する。
func SetupRouter(engine *gin.Engine, h *DirectoryHandler) {
	// ヘルスチェック
	engine.GET("/health", h.HandleHealth)

	// PBXはGET/POSTどちらでも呼んでくる
	engine.GET("/directory", h.HandleDirectory)
	engine.POST("/directory", h.HandleDirectory)
}
