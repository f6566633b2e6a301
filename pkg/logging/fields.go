package logging

import "log/slog"

// ログフィールド名の定数
const (
	FieldTraceID    = "trace_id"
	FieldEventID    = "event_id"
	FieldError      = "error"
	FieldCallID     = "call_id"
	FieldDomain     = "domain"
	FieldState      = "state"
	FieldLatencyMs  = "latency_ms"
	FieldHTTPStatus = "http_status"
	FieldCaller     = "caller"
	FieldDialed     = "dialed"
)

// WithTraceID はトレースIDのslog.Attrを返す。
func WithTraceID(traceID string) slog.Attr {
	return slog.String(FieldTraceID, traceID)
}

// WithEventID はイベントIDのslog.Attrを返す。
func WithEventID(eventID string) slog.Attr {
	return slog.String(FieldEventID, eventID)
}

// WithError はエラーのslog.Attrを返す。
func WithError(err error) slog.Attr {
	if err == nil {
		return slog.String(FieldError, "")
	}
	return slog.String(FieldError, err.Error())
}

// WithCallID は通話IDのslog.Attrを返す。
func WithCallID(callID string) slog.Attr {
	return slog.String(FieldCallID, callID)
}

// WithDomain はドメインのslog.Attrを返す。
func WithDomain(domain string) slog.Attr {
	return slog.String(FieldDomain, domain)
}

// WithState はセッション状態のslog.Attrを返す。
func WithState(state string) slog.Attr {
	return slog.String(FieldState, state)
}

// WithLatency はレイテンシ（ミリ秒）のslog.Attrを返す。
func WithLatency(ms int64) slog.Attr {
	return slog.Int64(FieldLatencyMs, ms)
}

// WithHTTPStatus はHTTPステータスコードのslog.Attrを返す。
func WithHTTPStatus(status int) slog.Attr {
	return slog.Int(FieldHTTPStatus, status)
}

// CommonFields はマスキング設定を保持するログフィールド生成器。
type CommonFields struct {
	masker *Masker
}

// NewCommonFields は新しいCommonFieldsを生成する。
func NewCommonFields(masker *Masker) *CommonFields {
	if masker == nil {
		masker = NewMasker(false)
	}
	return &CommonFields{masker: masker}
}

// WithCaller はマスキングされた発信者番号のslog.Attrを返す。
func (cf *CommonFields) WithCaller(number string) slog.Attr {
	return slog.String(FieldCaller, cf.masker.Number(number))
}

// WithDialed はマスキングされた着信番号のslog.Attrを返す。
func (cf *CommonFields) WithDialed(number string) slog.Attr {
	return slog.String(FieldDialed, cf.masker.Number(number))
}

// CallLogFields は通話イベントログ用の共通フィールドを返す。
func (cf *CommonFields) CallLogFields(traceID, callID, caller string) []any {
	return []any{
		WithTraceID(traceID),
		WithCallID(callID),
		cf.WithCaller(caller),
	}
}
