// Package callflow はダイヤルバイネームの通話状態遷移を実装する。
package callflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jeremyapple/netsapiens-dialbyname-directory/internal/config"
	"github.com/jeremyapple/netsapiens-dialbyname-directory/internal/directory"
	"github.com/jeremyapple/netsapiens-dialbyname-directory/internal/model"
	"github.com/jeremyapple/netsapiens-dialbyname-directory/internal/respdoc"
	"github.com/jeremyapple/netsapiens-dialbyname-directory/internal/session"
)

// Directory はコントローラーが利用する検索済みカタログの契約。
type Directory interface {
	Search(prefix string) []model.Entry
	Domain() string
	Mode() directory.Mode
}

// AutoAttendantChecker は退出時の戻り先判定の契約。
type AutoAttendantChecker interface {
	IsAutoAttendant(ctx context.Context, domain, user string) bool
}

// Params は1リクエスト分のコントローラー設定。
type Params struct {
	SelfURL    string
	MaxDigits  int
	MaxResults int

	ExitURL    string
	ExitAction string

	// ByCaller は転送時のByCaller属性値。空なら属性を出力しない。
	ByCaller string

	OperatorExtension string

	// 通話の発信元コンテキスト（戻り先判定用）
	AccountUser   string
	AccountDomain string
}

// Controller は1つのWebhookイベントを処理し制御ドキュメントを返す。
type Controller struct {
	dir      Directory
	sessions session.Store
	aa       AutoAttendantChecker
	docs     *respdoc.Builder
	p        Params
}

// NewController は新しいControllerを生成する。aaはnil可。
func NewController(dir Directory, sessions session.Store, aa AutoAttendantChecker, docs *respdoc.Builder, p Params) *Controller {
	return &Controller{dir: dir, sessions: sessions, aa: aa, docs: docs, p: p}
}

// Handle は通話イベントを1件処理する。
// digitsにはPBXが収集したDTMF入力がそのまま入る。
func (c *Controller) Handle(ctx context.Context, callID, digits string) string {
	call := c.loadSession(ctx, callID)

	// 戻り先判定は通話を通じて一度だけ
	if !call.ReturnToChecked {
		call.ReturnToChecked = true
		if c.aa != nil && c.p.AccountUser != "" && c.p.AccountDomain != "" {
			if c.aa.IsAutoAttendant(ctx, c.p.AccountDomain, c.p.AccountUser) {
				call.ReturnTo = c.p.AccountUser
				slog.Debug("exit will return to originating attendant",
					"event_id", "FLOW_RETURN_TO",
					"call_id", callID,
					"return_to", call.ReturnTo,
				)
			}
		}
	}

	// *キーは状態共通の最優先処理
	if strings.Contains(digits, "*") {
		return c.handleStar(ctx, callID, call)
	}

	// メインプロンプトでの0はオペレーター転送
	if digits == "0" && c.p.OperatorExtension != "" &&
		call.AccumulatedDigits == "" && call.State != session.StateSelecting {
		return c.transferToOperator(ctx, callID)
	}

	switch call.State {
	case session.StateInitial:
		if digits == "" {
			return c.promptForName(ctx, callID, call)
		}
		return c.handleSearching(ctx, callID, call, digits)
	case session.StateSearching:
		return c.handleSearching(ctx, callID, call, digits)
	case session.StateSelecting:
		return c.handleSelecting(ctx, callID, call, digits)
	default:
		// 不明な状態は自己修復してやり直す
		slog.Warn("unknown session state, resetting",
			"event_id", "FLOW_STATE_RESET",
			"call_id", callID,
			"state", string(call.State),
		)
		c.clearSession(ctx, callID)
		fresh := session.NewCall()
		fresh.ReturnTo = call.ReturnTo
		fresh.ReturnToChecked = call.ReturnToChecked
		return c.promptForName(ctx, callID, fresh)
	}
}

// loadSession はセッションを復元する。見つからない・壊れている・
// ストア障害のいずれも新規セッションとして扱う（通話を止めない）。
func (c *Controller) loadSession(ctx context.Context, callID string) *session.Call {
	call, err := c.sessions.Get(ctx, callID)
	if err != nil {
		if !errors.Is(err, session.ErrSessionNotFound) {
			slog.Warn("session load failed, starting fresh",
				"event_id", "FLOW_SESSION_ERR",
				"call_id", callID,
				"error", err.Error(),
			)
		}
		return session.NewCall()
	}
	return call
}

func (c *Controller) saveSession(ctx context.Context, callID string, call *session.Call) {
	if err := c.sessions.Save(ctx, callID, call); err != nil {
		slog.Warn("session save failed",
			"event_id", "FLOW_SESSION_ERR",
			"call_id", callID,
			"error", err.Error(),
		)
	}
}

func (c *Controller) clearSession(ctx context.Context, callID string) {
	if err := c.sessions.Clear(ctx, callID); err != nil {
		slog.Warn("session clear failed",
			"event_id", "FLOW_SESSION_ERR",
			"call_id", callID,
			"error", err.Error(),
		)
	}
}

// handleStar は*キーの処理。どこにいるかで意味が変わる:
// 候補表示の2ページ目以降なら前ページへ、1ページ目か検索入力中なら
// メインプロンプトへ、メインプロンプトなら退出処理。
func (c *Controller) handleStar(ctx context.Context, callID string, call *session.Call) string {
	if call.State == session.StateSelecting {
		if call.CurrentPage > 0 {
			return c.presentMenu(ctx, callID, call, call.AllMatches, call.CurrentPage-1)
		}
		return c.restartPrompt(ctx, callID, call)
	}

	if call.AccumulatedDigits != "" {
		return c.restartPrompt(ctx, callID, call)
	}

	return c.handleExit(ctx, callID, call)
}

// restartPrompt は検索途中の状態を捨ててメインプロンプトへ戻す。
func (c *Controller) restartPrompt(ctx context.Context, callID string, call *session.Call) string {
	call.AccumulatedDigits = ""
	call.AllMatches = nil
	call.CurrentPage = 0
	return c.promptForName(ctx, callID, call)
}

// handleExit はメインプロンプトでの*キーによるディレクトリ退出。
// 優先順: 明示的な退出URL → 発信元アテンダントへの復帰 →
// 設定によるハングアップ → ディレクトリ再開。
func (c *Controller) handleExit(ctx context.Context, callID string, call *session.Call) string {
	returnTo := call.ReturnTo
	c.clearSession(ctx, callID)

	if c.p.ExitURL != "" {
		slog.Info("exiting to configured url",
			"event_id", "FLOW_EXIT_URL",
			"call_id", callID,
		)
		return c.docs.Redirect(c.p.ExitURL, "Returning to main menu.")
	}

	if returnTo != "" {
		destination := returnTo + "@" + c.dir.Domain()
		slog.Info("returning to originating attendant",
			"event_id", "FLOW_EXIT_RETURN",
			"call_id", callID,
		)
		return c.docs.Forward(destination, []string{"Returning to main menu."}, c.p.ByCaller)
	}

	if strings.EqualFold(c.p.ExitAction, "hangup") {
		slog.Info("hanging up on exit",
			"event_id", "FLOW_EXIT_HANGUP",
			"call_id", callID,
		)
		return c.docs.Hangup("Goodbye.")
	}

	fresh := session.NewCall()
	fresh.ReturnTo = call.ReturnTo
	fresh.ReturnToChecked = call.ReturnToChecked
	return c.promptForName(ctx, callID, fresh)
}

// promptForName はメインプロンプトを返し、状態を検索中に揃える。
func (c *Controller) promptForName(ctx context.Context, callID string, call *session.Call) string {
	call.State = session.StateSearching
	call.AccumulatedDigits = ""
	c.saveSession(ctx, callID, call)

	prompts := []string{
		"Welcome to the dial by name directory.",
		fmt.Sprintf("Using your telephone keypad, enter up to %d letters of the person's %s, then press pound.",
			c.p.MaxDigits, c.dir.Mode().NameType()),
	}
	if c.p.OperatorExtension != "" {
		prompts = append(prompts, "Press 0 for the operator.")
	}
	if c.p.ExitURL != "" || call.ReturnTo != "" {
		prompts = append(prompts, "Press star to return to the main menu.")
	} else {
		prompts = append(prompts, "Press star to start over.")
	}

	return c.docs.Gather(prompts, respdoc.GatherOptions{
		NumDigits: c.p.MaxDigits,
		Timeout:   config.GatherTimeoutSec,
		Action:    c.p.SelfURL,
	})
}

// handleSearching は名前入力の数字を蓄積して検索する。
func (c *Controller) handleSearching(ctx context.Context, callID string, call *session.Call, digits string) string {
	call.AccumulatedDigits += digitsOnly(digits)
	if call.AccumulatedDigits == "" {
		return c.promptForName(ctx, callID, call)
	}

	matches := c.dir.Search(call.AccumulatedDigits)

	// 前段のプロンプトに最初の1桁を吸われた場合の補正:
	// 2〜9を先頭に補って昇順に再検索し、最初に当たったものを採用する
	if len(matches) == 0 && len(call.AccumulatedDigits) >= 2 {
		for d := byte('2'); d <= '9'; d++ {
			try := string(d) + call.AccumulatedDigits
			if m := c.dir.Search(try); len(m) > 0 {
				matches = m
				call.AccumulatedDigits = try
				slog.Debug("matched with prepended digit",
					"event_id", "FLOW_PREFIX_MATCH",
					"call_id", callID,
					"digits", try,
				)
				break
			}
		}
	}

	slog.Info("name search",
		"event_id", "FLOW_SEARCH",
		"call_id", callID,
		"digits", call.AccumulatedDigits,
		"matches", len(matches),
	)

	if len(matches) == 0 {
		call.AccumulatedDigits = ""
		c.saveSession(ctx, callID, call)
		return c.docs.Gather(
			[]string{"No matches were found.", "Please try again, or press star to start over."},
			respdoc.GatherOptions{
				NumDigits: c.p.MaxDigits,
				Timeout:   config.GatherTimeoutSec,
				Action:    c.p.SelfURL,
			})
	}

	if len(matches) == 1 {
		return c.transferTo(ctx, callID, matches[0])
	}

	return c.presentMenu(ctx, callID, call, matches, 0)
}

// handleSelecting は候補メニューでの1桁入力を処理する。
func (c *Controller) handleSelecting(ctx context.Context, callID string, call *session.Call, digits string) string {
	digit := strings.TrimSpace(digits)
	window := windowOf(call.AllMatches, call.CurrentPage, c.p.MaxResults)

	// 0: 現在ページの再読み上げ
	if digit == "0" {
		return c.presentMenu(ctx, callID, call, call.AllMatches, call.CurrentPage)
	}

	// 9: 次ページがあれば進む
	if digit == "9" {
		if window.hasMore {
			return c.presentMenu(ctx, callID, call, call.AllMatches, call.CurrentPage+1)
		}
		c.saveSession(ctx, callID, call)
		return c.docs.Gather(
			[]string{"No more options. Please make a selection, or press star to start over."},
			respdoc.GatherOptions{NumDigits: 1, Timeout: config.GatherTimeoutSec, Action: c.p.SelfURL})
	}

	if n, err := strconv.Atoi(digit); err == nil && n >= 1 && n <= len(window.entries) {
		return c.transferTo(ctx, callID, window.entries[n-1])
	}

	c.saveSession(ctx, callID, call)
	return c.docs.Gather(
		[]string{"Invalid selection. Please try again, or press star to start over."},
		respdoc.GatherOptions{NumDigits: 1, Timeout: config.GatherTimeoutSec, Action: c.p.SelfURL})
}

// presentMenu は候補メニューのページを読み上げる。
func (c *Controller) presentMenu(ctx context.Context, callID string, call *session.Call, matches []model.Entry, page int) string {
	call.State = session.StateSelecting
	call.AllMatches = matches
	call.CurrentPage = page
	call.AccumulatedDigits = ""
	c.saveSession(ctx, callID, call)

	window := windowOf(matches, page, c.p.MaxResults)
	totalPages := pageCount(len(matches), c.p.MaxResults)

	var sb strings.Builder
	if totalPages > 1 {
		fmt.Fprintf(&sb, "Page %d of %d. ", page+1, totalPages)
	}
	for i, entry := range window.entries {
		if i > 0 {
			sb.WriteString(" ")
		}
		fmt.Fprintf(&sb, "%d, %s.", i+1, entry.FullName)
	}
	if window.hasMore {
		fmt.Fprintf(&sb, " 9 for %d more options.", window.remaining)
	}
	sb.WriteString(" 0 to repeat.")
	if page > 0 {
		sb.WriteString(" Star for previous page.")
	} else {
		sb.WriteString(" Star to start over.")
	}

	return c.docs.Menu([]string{sb.String()}, c.p.SelfURL)
}

// transferTo は選択されたエントリへ転送し、セッションを破棄する。
func (c *Controller) transferTo(ctx context.Context, callID string, entry model.Entry) string {
	c.clearSession(ctx, callID)
	destination := entry.Extension + "@" + c.dir.Domain()
	slog.Info("transferring call",
		"event_id", "FLOW_TRANSFER",
		"call_id", callID,
		"extension", entry.Extension,
	)
	return c.docs.Forward(destination,
		[]string{fmt.Sprintf("Transferring to %s. Please hold.", entry.FullName)},
		c.p.ByCaller)
}

// transferToOperator はオペレーター内線へ転送する。
func (c *Controller) transferToOperator(ctx context.Context, callID string) string {
	c.clearSession(ctx, callID)
	destination := c.p.OperatorExtension + "@" + c.dir.Domain()
	slog.Info("transferring to operator",
		"event_id", "FLOW_OPERATOR",
		"call_id", callID,
	)
	return c.docs.Forward(destination,
		[]string{"Transferring to the operator. Please hold."},
		c.p.ByCaller)
}

// digitsOnly は入力から数字以外（#終端や空白）を取り除く。
func digitsOnly(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}
