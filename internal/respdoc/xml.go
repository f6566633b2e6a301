package respdoc

import (
	"strconv"
	"strings"
)

// xmlEscaper は属性値・テキストノード共用のエスケープ
var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

func escape(s string) string {
	return xmlEscaper.Replace(s)
}

// GatherOptions は数字収集ドキュメントのパラメータ。
type GatherOptions struct {
	NumDigits int
	Timeout   int
	Action    string
}

// Builder は共通の音声設定を持つ制御ドキュメントビルダー。
type Builder struct {
	voice Voice
}

// NewBuilder は新しいBuilderを生成する。
func NewBuilder(voice Voice) *Builder {
	return &Builder{voice: voice}
}

// Voice は現在の音声設定を返す。
func (b *Builder) Voice() Voice {
	return b.voice
}

func (b *Builder) say(sb *strings.Builder, text string) {
	sb.WriteString(`<Say voice="`)
	sb.WriteString(escape(b.voice.Name))
	sb.WriteString(`" language="`)
	sb.WriteString(escape(b.voice.Language))
	sb.WriteString(`">`)
	sb.WriteString(escape(text))
	sb.WriteString(`</Say>`)
}

// Gather は名前入力用の数字収集ドキュメントを返す。
// Responseラッパーを付けない素のGather要素である点に注意。
func (b *Builder) Gather(texts []string, opts GatherOptions) string {
	var sb strings.Builder
	sb.WriteString(`<Gather numDigits="`)
	sb.WriteString(strconv.Itoa(opts.NumDigits))
	sb.WriteString(`" timeout="`)
	sb.WriteString(strconv.Itoa(opts.Timeout))
	sb.WriteString(`"`)
	if opts.Action != "" {
		sb.WriteString(` action="`)
		sb.WriteString(escape(opts.Action))
		sb.WriteString(`"`)
	}
	sb.WriteString(`>`)
	b.say(&sb, strings.Join(texts, " "))
	sb.WriteString(`</Gather>`)
	return sb.String()
}

// Menu は1桁即時応答のメニュードキュメントを返す。
func (b *Builder) Menu(texts []string, action string) string {
	var sb strings.Builder
	sb.WriteString(`<Response>`)
	sb.WriteString(`<Gather input="dtmf" numDigits="1" action="`)
	sb.WriteString(escape(action))
	sb.WriteString(`">`)
	b.say(&sb, strings.Join(texts, " "))
	sb.WriteString(`</Gather>`)
	sb.WriteString(`</Response>`)
	return sb.String()
}

// Forward は指定先への転送ドキュメントを返す。
// byCallerが空の場合はByCaller属性自体を出力しない。
func (b *Builder) Forward(destination string, texts []string, byCaller string) string {
	var sb strings.Builder
	sb.WriteString(`<Response>`)
	if len(texts) > 0 {
		b.say(&sb, strings.Join(texts, " "))
	}
	if byCaller != "" {
		sb.WriteString(`<Forward ByCaller="`)
		sb.WriteString(escape(byCaller))
		sb.WriteString(`">`)
	} else {
		sb.WriteString(`<Forward>`)
	}
	sb.WriteString(escape(destination))
	sb.WriteString(`</Forward>`)
	sb.WriteString(`</Response>`)
	return sb.String()
}

// Hangup は切断ドキュメントを返す。
func (b *Builder) Hangup(texts ...string) string {
	var sb strings.Builder
	sb.WriteString(`<Response>`)
	if len(texts) > 0 {
		b.say(&sb, strings.Join(texts, " "))
	}
	sb.WriteString(`<Hangup/>`)
	sb.WriteString(`</Response>`)
	return sb.String()
}

// Redirect は外部URLへの誘導ドキュメントを返す。
// PBXはForwardに指定されたURLへ次のイベントをPOSTする。
func (b *Builder) Redirect(url string, texts ...string) string {
	var sb strings.Builder
	sb.WriteString(`<Response>`)
	if len(texts) > 0 {
		b.say(&sb, strings.Join(texts, " "))
	}
	sb.WriteString(`<Forward>`)
	sb.WriteString(escape(url))
	sb.WriteString(`</Forward>`)
	sb.WriteString(`</Response>`)
	return sb.String()
}
