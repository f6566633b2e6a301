package respdoc

import (
	"strings"
	"testing"
)

func TestNewVoice(t *testing.T) {
	tests := []struct {
		name         string
		language     string
		voice        string
		wantLanguage string
		wantName     string
	}{
		{"既定値そのまま", "en-US", "female", "en-US", "female"},
		{"許可リスト内の言語", "ja-JP", "male", "ja-JP", "male"},
		{"不明な言語はen-US", "xx-XX", "female", "en-US", "female"},
		{"ボイスIDは通す", "en-US", "en-US-Wavenet-D", "en-US", "en-us-wavenet-d"},
		{"不明な話者はfemale", "en-US", "robot", "en-US", "female"},
		{"空入力", "", "", "en-US", "female"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewVoice(tt.language, tt.voice)
			if v.Language != tt.wantLanguage {
				t.Errorf("Language = %q, want %q", v.Language, tt.wantLanguage)
			}
			if v.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", v.Name, tt.wantName)
			}
		})
	}
}

func TestGather(t *testing.T) {
	b := NewBuilder(NewVoice("en-US", "female"))

	got := b.Gather([]string{"Welcome.", "Enter a name."}, GatherOptions{
		NumDigits: 4,
		Timeout:   10,
		Action:    "https://host/directory?domain=example.com",
	})

	want := `<Gather numDigits="4" timeout="10" action="https://host/directory?domain=example.com">` +
		`<Say voice="female" language="en-US">Welcome. Enter a name.</Say></Gather>`
	if got != want {
		t.Errorf("Gather:\n got %s\nwant %s", got, want)
	}
}

func TestGatherNoAction(t *testing.T) {
	b := NewBuilder(NewVoice("en-US", "female"))

	got := b.Gather([]string{"hi"}, GatherOptions{NumDigits: 2, Timeout: 5})
	if strings.Contains(got, "action=") {
		t.Errorf("expected no action attribute: %s", got)
	}
	if strings.HasPrefix(got, "<Response>") {
		t.Errorf("Gather must not be Response-wrapped: %s", got)
	}
}

func TestMenu(t *testing.T) {
	b := NewBuilder(NewVoice("en-US", "female"))

	got := b.Menu([]string{"Press 1 for Alice Smith."}, "https://host/directory")
	want := `<Response><Gather input="dtmf" numDigits="1" action="https://host/directory">` +
		`<Say voice="female" language="en-US">Press 1 for Alice Smith.</Say></Gather></Response>`
	if got != want {
		t.Errorf("Menu:\n got %s\nwant %s", got, want)
	}
}

func TestForward(t *testing.T) {
	b := NewBuilder(NewVoice("en-US", "female"))

	got := b.Forward("1001", []string{"Transferring to Alice Smith. Please hold."}, "yes")
	want := `<Response><Say voice="female" language="en-US">Transferring to Alice Smith. Please hold.</Say>` +
		`<Forward ByCaller="yes">1001</Forward></Response>`
	if got != want {
		t.Errorf("Forward:\n got %s\nwant %s", got, want)
	}
}

func TestForwardWithoutByCaller(t *testing.T) {
	b := NewBuilder(NewVoice("en-US", "female"))

	got := b.Forward("1001", nil, "")
	want := `<Response><Forward>1001</Forward></Response>`
	if got != want {
		t.Errorf("Forward:\n got %s\nwant %s", got, want)
	}
}

func TestHangup(t *testing.T) {
	b := NewBuilder(NewVoice("en-US", "female"))

	got := b.Hangup("Goodbye.")
	want := `<Response><Say voice="female" language="en-US">Goodbye.</Say><Hangup/></Response>`
	if got != want {
		t.Errorf("Hangup:\n got %s\nwant %s", got, want)
	}

	if got := b.Hangup(); got != `<Response><Hangup/></Response>` {
		t.Errorf("bare Hangup: %s", got)
	}
}

func TestRedirect(t *testing.T) {
	b := NewBuilder(NewVoice("en-US", "female"))

	got := b.Redirect("https://host/menu?x=1&y=2", "Returning to the main menu.")
	want := `<Response><Say voice="female" language="en-US">Returning to the main menu.</Say>` +
		`<Forward>https://host/menu?x=1&amp;y=2</Forward></Response>`
	if got != want {
		t.Errorf("Redirect:\n got %s\nwant %s", got, want)
	}
}

func TestEscaping(t *testing.T) {
	b := NewBuilder(NewVoice("en-US", "female"))

	got := b.Forward("1001", []string{`Transferring to O'Brien & Sons <Ltd>.`}, "")
	for _, raw := range []string{"<Ltd>", "&reg", "O'Brien &"} {
		if strings.Contains(got, raw) {
			t.Errorf("unescaped content %q in %s", raw, got)
		}
	}
	if !strings.Contains(got, "O&#39;Brien &amp; Sons &lt;Ltd&gt;.") {
		t.Errorf("expected escaped text, got %s", got)
	}
}
