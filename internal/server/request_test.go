package server

import (
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/jeremyapple/netsapiens-dialbyname-directory/internal/config"
	"github.com/jeremyapple/netsapiens-dialbyname-directory/internal/directory"
)

func testConfig() *config.Config {
	return &config.Config{
		DefaultLanguage:   "en-US",
		DefaultVoice:      "female",
		DefaultMaxDigits:  4,
		DefaultMaxResults: 8,
		ExitAction:        "forward",
	}
}

func eventFromRequest(t *testing.T, method, target, contentType, body string) *CallEvent {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	c.Request = httptest.NewRequest(method, target, reader)
	if contentType != "" {
		c.Request.Header.Set("Content-Type", contentType)
	}

	return ParseCallEvent(c, testConfig())
}

func TestParseCallEventFormBody(t *testing.T) {
	form := url.Values{}
	form.Set("domain", "example.com")
	form.Set("Digits", "7648")
	form.Set("OrigCallID", "orig-123")

	ev := eventFromRequest(t, "POST", "/directory",
		"application/x-www-form-urlencoded", form.Encode())

	if ev.Domain != "example.com" {
		t.Errorf("Domain = %q", ev.Domain)
	}
	if ev.Digits != "7648" {
		t.Errorf("Digits = %q (Digits alias not honored)", ev.Digits)
	}
	if ev.CallID != "orig-123" {
		t.Errorf("CallID = %q (OrigCallID alias not honored)", ev.CallID)
	}
}

func TestParseCallEventJSONBody(t *testing.T) {
	body := `{"ToDomain":"example.com","digits":"123","call_id":"c-1","maxresults":5}`

	ev := eventFromRequest(t, "POST", "/directory", "application/json", body)

	if ev.Domain != "example.com" {
		t.Errorf("Domain = %q (ToDomain alias not honored)", ev.Domain)
	}
	if ev.Digits != "123" {
		t.Errorf("Digits = %q", ev.Digits)
	}
	if ev.MaxResults != 5 {
		t.Errorf("MaxResults = %d (JSON number not parsed)", ev.MaxResults)
	}
}

func TestParseCallEventQueryOverridesBody(t *testing.T) {
	form := url.Values{}
	form.Set("domain", "body.example.com")

	ev := eventFromRequest(t, "POST", "/directory?domain=query.example.com",
		"application/x-www-form-urlencoded", form.Encode())

	if ev.Domain != "query.example.com" {
		t.Errorf("Domain = %q, query must win over body", ev.Domain)
	}
}

func TestParseCallEventDefaults(t *testing.T) {
	ev := eventFromRequest(t, "GET", "/directory?domain=example.com", "", "")

	if ev.CallID == "" {
		t.Error("missing call id should be generated")
	}
	if ev.MaxDigits != 4 || ev.MaxResults != 8 {
		t.Errorf("defaults not applied: maxdigits=%d maxresults=%d", ev.MaxDigits, ev.MaxResults)
	}
	if ev.Mode != directory.ModeLastName {
		t.Errorf("Mode = %v, want lastname", ev.Mode)
	}
	if ev.Language != "en-US" || ev.Voice != "female" {
		t.Errorf("voice defaults not applied: %s %s", ev.Language, ev.Voice)
	}
}

func TestParseCallEventClamps(t *testing.T) {
	ev := eventFromRequest(t, "GET",
		"/directory?domain=example.com&maxdigits=99&maxresults=0", "", "")

	if ev.MaxDigits != 10 {
		t.Errorf("MaxDigits = %d, want clamp to 10", ev.MaxDigits)
	}
	if ev.MaxResults != 1 {
		t.Errorf("MaxResults = %d, want clamp to 1", ev.MaxResults)
	}

	ev = eventFromRequest(t, "GET", "/directory?domain=example.com&maxdigits=1", "", "")
	if ev.MaxDigits != 2 {
		t.Errorf("MaxDigits = %d, want clamp to 2", ev.MaxDigits)
	}
}

func TestParseCallEventCSVFilters(t *testing.T) {
	ev := eventFromRequest(t, "GET",
		"/directory?domain=example.com&site=NYC,+LA+,&department=Sales", "", "")

	if len(ev.Sites) != 2 || ev.Sites[0] != "NYC" || ev.Sites[1] != "LA" {
		t.Errorf("Sites = %v", ev.Sites)
	}
	if len(ev.Departments) != 1 || ev.Departments[0] != "Sales" {
		t.Errorf("Departments = %v", ev.Departments)
	}
}

func TestParseCallEventInvalidExitAction(t *testing.T) {
	ev := eventFromRequest(t, "GET",
		"/directory?domain=example.com&exit_action=explode", "", "")

	if ev.ExitAction != "forward" {
		t.Errorf("ExitAction = %q, want forward fallback", ev.ExitAction)
	}
}

func TestResolveByCaller(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]string
		want   string
	}{
		{"内線はyes", map[string]string{"NmsAni": "1001", "NmsDnis": "1002"}, "yes"},
		{"外線同士は省略", map[string]string{"NmsAni": "12135551234", "NmsDnis": "+1 (213) 555-9999"}, ""},
		{"片方だけ外線はyes", map[string]string{"NmsAni": "12135551234", "NmsDnis": "1002"}, "yes"},
		{"番号なしはyes", map[string]string{}, "yes"},
		{"上書きno", map[string]string{"NmsAni": "1001", "NmsDnis": "1002", "bycaller": "no"}, "no"},
		{"上書きnone", map[string]string{"NmsAni": "1001", "NmsDnis": "1002", "bycaller": "none"}, ""},
		{"上書きyesで外線でも付与", map[string]string{"NmsAni": "12135551234", "NmsDnis": "12135559999", "bycaller": "yes"}, "yes"},
		{"不明な上書きは無視", map[string]string{"NmsAni": "1001", "NmsDnis": "1002", "bycaller": "maybe"}, "yes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveByCaller(tt.params); got != tt.want {
				t.Errorf("resolveByCaller = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSelfURLPreservesNonDefaults(t *testing.T) {
	ev := eventFromRequest(t, "GET",
		"/directory?domain=example.com&mode=firstname&maxdigits=6&site=NYC&operator=100", "", "")

	selfURL := ev.SelfURL("/directory", testConfig())

	u, err := url.Parse(selfURL)
	if err != nil {
		t.Fatalf("invalid self url: %v", err)
	}
	q := u.Query()
	if q.Get("domain") != "example.com" {
		t.Errorf("domain not preserved: %s", selfURL)
	}
	if q.Get("mode") != "firstname" || q.Get("maxdigits") != "6" {
		t.Errorf("non-default params not preserved: %s", selfURL)
	}
	if q.Get("site") != "NYC" || q.Get("operator") != "100" {
		t.Errorf("filters not preserved: %s", selfURL)
	}
	// 既定値は引き継がない
	if q.Has("maxresults") || q.Has("language") || q.Has("voice") || q.Has("exit_action") {
		t.Errorf("default params should be omitted: %s", selfURL)
	}
}
