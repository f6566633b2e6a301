package server

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jeremyapple/netsapiens-dialbyname-directory/internal/config"
	"github.com/jeremyapple/netsapiens-dialbyname-directory/internal/directory"
)

// CallEvent は正規化済みのWebhookイベント。
type CallEvent struct {
	Domain string
	Digits string
	CallID string

	Sites       []string
	Departments []string
	Mode        directory.Mode

	MaxDigits  int
	MaxResults int

	Language string
	Voice    string

	ExitURL           string
	ExitAction        string
	OperatorExtension string

	// ByCaller は転送時のByCaller属性値（空 = 属性を出力しない）
	ByCaller string

	AccountUser   string
	AccountDomain string
}

// ParseCallEvent はリクエストからイベントを組み立てる。
//
// ボディ（JSONまたはフォーム）のフィールドにクエリパラメータを
// 上書きマージし、PBX世代差のあるフィールド名エイリアスを吸収する。
// 範囲外のパラメータはエラーではなく黙ってクランプする
// （通話中のリクエストを弾いても誰も直せないため）。
func ParseCallEvent(c *gin.Context, cfg *config.Config) *CallEvent {
	params := mergeParams(c)

	ev := &CallEvent{
		Domain: pick(params, "domain", "ToDomain", "AccountDomain"),
		Digits: pick(params, "digits", "Digits"),
		CallID: pick(params, "call_id", "OrigCallID", "TermCallID"),

		Sites:       splitCSV(params["site"]),
		Departments: splitCSV(params["department"]),
		Mode:        directory.ParseMode(params["mode"]),

		Language: fallback(params["language"], cfg.DefaultLanguage),
		Voice:    fallback(params["voice"], cfg.DefaultVoice),

		ExitURL:           fallback(params["exit_url"], cfg.ExitURL),
		ExitAction:        fallback(params["exit_action"], cfg.ExitAction),
		OperatorExtension: fallback(params["operator"], cfg.OperatorExtension),

		AccountUser:   params["AccountUser"],
		AccountDomain: fallback(params["AccountDomain"], pick(params, "domain", "ToDomain")),
	}

	// セッションの継続にはPBXの通話IDが必要。欠落時は採番して
	// 少なくとも単発リクエストとしては成立させる
	if ev.CallID == "" {
		ev.CallID = uuid.NewString()
	}

	ev.MaxDigits = clampInt(params["maxdigits"], cfg.DefaultMaxDigits, config.MinGatherDigits, config.MaxGatherDigits)
	ev.MaxResults = clampInt(params["maxresults"], cfg.DefaultMaxResults, 1, config.MaxMenuResults)

	switch strings.ToLower(ev.ExitAction) {
	case "forward", "hangup", "restart":
	default:
		ev.ExitAction = "forward"
	}

	ev.ByCaller = resolveByCaller(params)

	return ev
}

// mergeParams はボディとクエリを1枚のマップに平坦化する。
// クエリパラメータがボディより優先される。
func mergeParams(c *gin.Context) map[string]string {
	params := make(map[string]string)

	contentType := c.GetHeader("Content-Type")
	if strings.Contains(strings.ToLower(contentType), "application/json") {
		var body map[string]any
		if err := json.NewDecoder(c.Request.Body).Decode(&body); err == nil {
			for k, v := range body {
				switch val := v.(type) {
				case string:
					params[k] = val
				case float64, bool:
					params[k] = fmt.Sprint(val)
				}
			}
		}
	} else {
		if err := c.Request.ParseForm(); err == nil {
			for k, vs := range c.Request.PostForm {
				if len(vs) > 0 {
					params[k] = vs[0]
				}
			}
		}
	}

	for k, vs := range c.Request.URL.Query() {
		if len(vs) > 0 {
			params[k] = vs[0]
		}
	}

	return params
}

// resolveByCaller はByCaller属性値を決定する。
//
// 自動判定: 発信者番号と着信番号の両方が数字10桁以上（外線/PSTN）なら
// 属性を省略、それ以外（内線）は "yes"。bycallerパラメータで
// yes/no/none の明示上書きが可能。
func resolveByCaller(params map[string]string) string {
	byCaller := "yes"
	ani := digitCount(params["NmsAni"])
	dnis := digitCount(params["NmsDnis"])
	if ani >= 10 && dnis >= 10 {
		byCaller = ""
	}

	if override, ok := params["bycaller"]; ok {
		switch strings.ToLower(strings.TrimSpace(override)) {
		case "yes", "no":
			byCaller = strings.ToLower(strings.TrimSpace(override))
		case "none", "":
			byCaller = ""
		}
	}

	return byCaller
}

// SelfURL はPBXが次のイベントで呼び戻すURLを組み立てる。
// 既定値と異なるパラメータのみをクエリとして引き継ぐ。
func (ev *CallEvent) SelfURL(path string, cfg *config.Config) string {
	q := url.Values{}

	if len(ev.Sites) > 0 {
		q.Set("site", strings.Join(ev.Sites, ","))
	}
	if len(ev.Departments) > 0 {
		q.Set("department", strings.Join(ev.Departments, ","))
	}
	if ev.Mode != directory.ModeLastName {
		q.Set("mode", string(ev.Mode))
	}
	if ev.MaxDigits != cfg.DefaultMaxDigits {
		q.Set("maxdigits", strconv.Itoa(ev.MaxDigits))
	}
	if ev.MaxResults != cfg.DefaultMaxResults {
		q.Set("maxresults", strconv.Itoa(ev.MaxResults))
	}
	if ev.Language != cfg.DefaultLanguage {
		q.Set("language", ev.Language)
	}
	if ev.Voice != cfg.DefaultVoice {
		q.Set("voice", ev.Voice)
	}
	if ev.OperatorExtension != "" {
		q.Set("operator", ev.OperatorExtension)
	}
	if ev.ExitURL != "" {
		q.Set("exit_url", ev.ExitURL)
	}
	if !strings.EqualFold(ev.ExitAction, "forward") {
		q.Set("exit_action", ev.ExitAction)
	}
	// domainはPBXが毎回送るとは限らないため常に引き継ぐ
	q.Set("domain", ev.Domain)

	return path + "?" + q.Encode()
}

func pick(params map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := params[k]; v != "" {
			return v
		}
	}
	return ""
}

func fallback(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func clampInt(s string, def, min, max int) int {
	n := def
	if s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			n = v
		}
	}
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}

func digitCount(s string) int {
	count := 0
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			count++
		}
	}
	return count
}
