package directory

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/jeremyapple/netsapiens-dialbyname-directory/internal/mocks"
	"github.com/jeremyapple/netsapiens-dialbyname-directory/internal/model"
	"github.com/jeremyapple/netsapiens-dialbyname-directory/internal/nsapi"
)

// stubCache はテスト用のResultCache実装。
type stubCache struct {
	store    map[string][]model.Entry
	setErr   error
	getCalls int
	setCalls int
}

func newStubCache() *stubCache {
	return &stubCache{store: make(map[string][]model.Entry)}
}

func (s *stubCache) Get(_ context.Context, fingerprint string) ([]model.Entry, bool, error) {
	s.getCalls++
	entries, ok := s.store[fingerprint]
	return entries, ok, nil
}

func (s *stubCache) Set(_ context.Context, fingerprint string, entries []model.Entry) error {
	s.setCalls++
	if s.setErr != nil {
		return s.setErr
	}
	s.store[fingerprint] = entries
	return nil
}

func (s *stubCache) MaybePurge(_ context.Context) {}

func listedUser(ext, first, last string) nsapi.RawUser {
	return nsapi.RawUser{
		User:             ext,
		FirstName:        first,
		LastName:         last,
		DirectoryEnabled: "yes",
	}
}

func TestEntryFromRawEligibility(t *testing.T) {
	tests := []struct {
		name string
		raw  nsapi.RawUser
		want bool
	}{
		{"掲載可能な一般ユーザー", listedUser("1001", "Alice", "Smith"), true},
		{"姓のみでも可", nsapi.RawUser{User: "1002", LastName: "Smith", DirectoryEnabled: "yes"}, true},
		{"systemプレフィックスは除外", nsapi.RawUser{User: "9000", FirstName: "Auto", LastName: "Attendant", ServiceCode: "system-aa", DirectoryEnabled: "yes"}, false},
		{"掲載フラグなしは除外", nsapi.RawUser{User: "1003", FirstName: "Bob", LastName: "Jones"}, false},
		{"掲載フラグnoは除外", nsapi.RawUser{User: "1004", FirstName: "Carol", LastName: "White", DirectoryEnabled: "no"}, false},
		{"名前なしは除外", nsapi.RawUser{User: "1005", DirectoryEnabled: "yes"}, false},
		{"内線なしは除外", nsapi.RawUser{FirstName: "Dave", LastName: "Brown", DirectoryEnabled: "yes"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got := EntryFromRaw(tt.raw)
			if got != tt.want {
				t.Errorf("EntryFromRaw eligible = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEntryFromRawDerivedFields(t *testing.T) {
	entry, ok := EntryFromRaw(listedUser("1001", "Alice", "Smith"))
	if !ok {
		t.Fatal("expected eligible entry")
	}
	if entry.FullName != "Alice Smith" {
		t.Errorf("FullName = %q", entry.FullName)
	}
	if entry.FirstDigits != "25423" {
		t.Errorf("FirstDigits = %q, want 25423", entry.FirstDigits)
	}
	if entry.LastDigits != "76484" {
		t.Errorf("LastDigits = %q, want 76484", entry.LastDigits)
	}
}

func TestCatalogLoadSortsAndFilters(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := mocks.NewMockUserSource(ctrl)

	source.EXPECT().
		FetchUsers(gomock.Any(), "example.com", "", "").
		Return([]nsapi.RawUser{
			listedUser("1003", "Bob", "Smith"),
			listedUser("1001", "Zoe", "Adams"),
			listedUser("1002", "ann", "smith"),
			{User: "9000", FirstName: "Auto", LastName: "Attendant", ServiceCode: "system-aa", DirectoryEnabled: "yes"},
		}, nil)

	c := NewCatalog(source, nil, ModeLastName)
	if err := c.Load(context.Background(), "example.com", nil, nil); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if c.Len() != 3 {
		t.Fatalf("Len = %d, want 3", c.Len())
	}

	// 姓→名の大文字小文字無視ソート: Adams, smith ann, Smith Bob
	all := c.Search("")
	wantExts := []string{"1001", "1002", "1003"}
	for i, want := range wantExts {
		if all[i].Extension != want {
			t.Errorf("position %d: extension = %s, want %s", i, all[i].Extension, want)
		}
	}
}

func TestCatalogLoadCrossProduct(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := mocks.NewMockUserSource(ctrl)

	// site 2件 × department 2件 = 4サブクエリ
	for _, site := range []string{"NYC", "LA"} {
		for _, dept := range []string{"Sales", "Eng"} {
			source.EXPECT().
				FetchUsers(gomock.Any(), "example.com", site, dept).
				Return([]nsapi.RawUser{listedUser("1001", "Alice", "Smith")}, nil)
		}
	}

	c := NewCatalog(source, nil, ModeLastName)
	if err := c.Load(context.Background(), "example.com", []string{"NYC", "LA"}, []string{"Sales", "Eng"}); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// 4クエリ全部が同じユーザーを返しても内線で重複排除される
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1 after dedup", c.Len())
	}
}

func TestCatalogLoadPartialFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := mocks.NewMockUserSource(ctrl)

	source.EXPECT().
		FetchUsers(gomock.Any(), "example.com", "NYC", "").
		Return(nil, errors.New("api down"))
	source.EXPECT().
		FetchUsers(gomock.Any(), "example.com", "LA", "").
		Return([]nsapi.RawUser{listedUser("1001", "Alice", "Smith")}, nil)

	c := NewCatalog(source, nil, ModeLastName)
	if err := c.Load(context.Background(), "example.com", []string{"NYC", "LA"}, nil); err != nil {
		t.Fatalf("expected success with partial data, got %v", err)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestCatalogLoadAllFail(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := mocks.NewMockUserSource(ctrl)

	source.EXPECT().
		FetchUsers(gomock.Any(), "example.com", gomock.Any(), gomock.Any()).
		Return(nil, errors.New("api down")).
		Times(2)

	c := NewCatalog(source, nil, ModeLastName)
	err := c.Load(context.Background(), "example.com", []string{"NYC", "LA"}, nil)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestCatalogLoadCacheHitSkipsFetch(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := mocks.NewMockUserSource(ctrl)
	// FetchUsersへの期待を登録しない = 呼ばれたら失敗

	sc := newStubCache()
	sc.store["example.com||"] = []model.Entry{
		{Extension: "1001", FirstName: "Alice", LastName: "Smith", LastDigits: "76484"},
	}

	c := NewCatalog(source, sc, ModeLastName)
	if err := c.Load(context.Background(), "example.com", nil, nil); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1 from cache", c.Len())
	}
}

func TestCatalogLoadWritesThroughCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := mocks.NewMockUserSource(ctrl)
	source.EXPECT().
		FetchUsers(gomock.Any(), "example.com", "", "").
		Return([]nsapi.RawUser{listedUser("1001", "Alice", "Smith")}, nil)

	sc := newStubCache()
	c := NewCatalog(source, sc, ModeLastName)
	if err := c.Load(context.Background(), "example.com", nil, nil); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if sc.setCalls != 1 {
		t.Errorf("cache Set called %d times, want 1", sc.setCalls)
	}
	if got := len(sc.store["example.com||"]); got != 1 {
		t.Errorf("cached %d entries, want 1", got)
	}
}

func TestCatalogLoadEmptyResultNotCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := mocks.NewMockUserSource(ctrl)
	source.EXPECT().
		FetchUsers(gomock.Any(), "example.com", "", "").
		Return([]nsapi.RawUser{}, nil)

	sc := newStubCache()
	c := NewCatalog(source, sc, ModeLastName)
	if err := c.Load(context.Background(), "example.com", nil, nil); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if sc.setCalls != 0 {
		t.Errorf("empty result should not be cached, Set called %d times", sc.setCalls)
	}
}

func TestCatalogLoadCacheWriteFailureNonFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := mocks.NewMockUserSource(ctrl)
	source.EXPECT().
		FetchUsers(gomock.Any(), "example.com", "", "").
		Return([]nsapi.RawUser{listedUser("1001", "Alice", "Smith")}, nil)

	sc := newStubCache()
	sc.setErr = errors.New("valkey down")

	c := NewCatalog(source, sc, ModeLastName)
	if err := c.Load(context.Background(), "example.com", nil, nil); err != nil {
		t.Fatalf("cache write failure should not fail Load: %v", err)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestCatalogSearchModes(t *testing.T) {
	users := []nsapi.RawUser{
		listedUser("1001", "Alice", "Smith"),  // first=25423 last=76484
		listedUser("1002", "Sam", "Alderton"), // first=726 last=25337866
	}

	tests := []struct {
		name     string
		mode     Mode
		prefix   string
		wantExts []string
	}{
		{"姓モード", ModeLastName, "76", []string{"1001"}},
		{"名モード", ModeFirstName, "72", []string{"1002"}},
		{"bothモードは両方に一致", ModeBoth, "25", []string{"1002", "1001"}},
		{"一致なし", ModeLastName, "99", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			source := mocks.NewMockUserSource(ctrl)
			source.EXPECT().
				FetchUsers(gomock.Any(), "example.com", "", "").
				Return(users, nil)

			c := NewCatalog(source, nil, tt.mode)
			if err := c.Load(context.Background(), "example.com", nil, nil); err != nil {
				t.Fatalf("Load failed: %v", err)
			}

			matches := c.Search(tt.prefix)
			if len(matches) != len(tt.wantExts) {
				t.Fatalf("got %d matches, want %d", len(matches), len(tt.wantExts))
			}
			for i, want := range tt.wantExts {
				if matches[i].Extension != want {
					t.Errorf("match %d: extension = %s, want %s", i, matches[i].Extension, want)
				}
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
	}{
		{"lastname", ModeLastName},
		{"firstname", ModeFirstName},
		{"both", ModeBoth},
		{"BOTH", ModeBoth},
		{"", ModeLastName},
		{"garbage", ModeLastName},
	}
	for _, tt := range tests {
		if got := ParseMode(tt.in); got != tt.want {
			t.Errorf("ParseMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
