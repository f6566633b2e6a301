package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jeremyapple/netsapiens-dialbyname-directory/internal/cache"
	"github.com/jeremyapple/netsapiens-dialbyname-directory/internal/callflow"
	"github.com/jeremyapple/netsapiens-dialbyname-directory/internal/config"
	"github.com/jeremyapple/netsapiens-dialbyname-directory/internal/directory"
	"github.com/jeremyapple/netsapiens-dialbyname-directory/internal/nsapi"
	"github.com/jeremyapple/netsapiens-dialbyname-directory/internal/respdoc"
	"github.com/jeremyapple/netsapiens-dialbyname-directory/internal/session"
	"github.com/jeremyapple/netsapiens-dialbyname-directory/pkg/logging"
)

// DirectoryHandler はWebhookイベントを処理するハンドラー。
type DirectoryHandler struct {
	cfg      *config.Config
	source   nsapi.UserSource
	cache    *cache.Cache // nilでキャッシュ無効
	sessions session.Store
	fields   *logging.CommonFields
}

// NewDirectoryHandler は新しいDirectoryHandlerを生成する。resultCacheはnil可。
func NewDirectoryHandler(cfg *config.Config, source nsapi.UserSource, resultCache *cache.Cache, sessions session.Store) *DirectoryHandler {
	return &DirectoryHandler{
		cfg:      cfg,
		source:   source,
		cache:    resultCache,
		sessions: sessions,
		fields:   logging.NewCommonFields(logging.NewMasker(cfg.LogMaskNumbers)),
	}
}

// HandleDirectory はPOST/GET /directory のハンドラー。
// 応答は失敗時も含めて常にHTTP 200の制御ドキュメント。
// エラーステータスを返してもPBXは通話者に何も再生できない。
func (h *DirectoryHandler) HandleDirectory(c *gin.Context) {
	ev := ParseCallEvent(c, h.cfg)
	docs := respdoc.NewBuilder(respdoc.NewVoice(ev.Language, ev.Voice))
	traceID := TraceIDFrom(c)

	if ev.Domain == "" {
		slog.Error("event without domain",
			logging.WithEventID("REQ_NO_DOMAIN"),
			logging.WithTraceID(traceID),
			logging.WithCallID(ev.CallID),
		)
		c.Data(http.StatusOK, respdoc.ContentTypeXML,
			[]byte(docs.Hangup("System configuration error. Domain is required.")))
		return
	}

	slog.Info("call event received",
		logging.WithEventID("REQ_EVENT"),
		logging.WithTraceID(traceID),
		logging.WithCallID(ev.CallID),
		logging.WithDomain(ev.Domain),
		h.fields.WithCaller(c.Query("NmsAni")),
		h.fields.WithDialed(c.Query("NmsDnis")),
		slog.String("digits", ev.Digits),
	)

	var resultCache directory.ResultCache
	if h.cache != nil {
		resultCache = h.cache
	}
	catalog := directory.NewCatalog(h.source, resultCache, ev.Mode)
	if err := catalog.Load(c.Request.Context(), ev.Domain, ev.Sites, ev.Departments); err != nil {
		slog.Error("directory load failed",
			logging.WithEventID("REQ_DIR_UNAVAILABLE"),
			logging.WithTraceID(traceID),
			logging.WithCallID(ev.CallID),
			logging.WithDomain(ev.Domain),
			logging.WithError(err),
		)
		c.Data(http.StatusOK, respdoc.ContentTypeXML,
			[]byte(docs.Hangup("We're sorry, the directory is temporarily unavailable. Please try again later.")))
		return
	}

	controller := callflow.NewController(catalog, h.sessions, h.source, docs, callflow.Params{
		SelfURL:           ev.SelfURL(c.Request.URL.Path, h.cfg),
		MaxDigits:         ev.MaxDigits,
		MaxResults:        ev.MaxResults,
		ExitURL:           ev.ExitURL,
		ExitAction:        ev.ExitAction,
		ByCaller:          ev.ByCaller,
		OperatorExtension: ev.OperatorExtension,
		AccountUser:       ev.AccountUser,
		AccountDomain:     ev.AccountDomain,
	})

	xml := controller.Handle(c.Request.Context(), ev.CallID, ev.Digits)
	c.Data(http.StatusOK, respdoc.ContentTypeXML, []byte(xml))
}

// HandleHealth はGET /health のハンドラー。
func (h *DirectoryHandler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
