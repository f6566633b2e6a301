// Package directory はディレクトリカタログの構築と数字列による検索を提供する。
package directory

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"github.com/jeremyapple/netsapiens-dialbyname-directory/internal/cache"
	"github.com/jeremyapple/netsapiens-dialbyname-directory/internal/model"
	"github.com/jeremyapple/netsapiens-dialbyname-directory/internal/nsapi"
)

// ErrUnavailable は全サブクエリが失敗しデータが1件も得られなかった場合のエラー
var ErrUnavailable = errors.New("directory temporarily unavailable")

// Mode は検索対象の名前種別
type Mode string

const (
	ModeLastName  Mode = "lastname"
	ModeFirstName Mode = "firstname"
	ModeBoth      Mode = "both"
)

// ParseMode はリクエストパラメータから検索モードを決定する。
// 不明な値はlastnameにフォールバックする。
func ParseMode(s string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeFirstName:
		return ModeFirstName
	case ModeBoth:
		return ModeBoth
	default:
		return ModeLastName
	}
}

// NameType はプロンプト文言に埋め込む名前種別の英語表現を返す。
func (m Mode) NameType() string {
	switch m {
	case ModeFirstName:
		return "first name"
	case ModeBoth:
		return "first or last name"
	default:
		return "last name"
	}
}

// ResultCache はカタログが利用するキャッシュの契約。
// 実装は *cache.Cache（本番）またはテスト用スタブ。
type ResultCache interface {
	Get(ctx context.Context, fingerprint string) ([]model.Entry, bool, error)
	Set(ctx context.Context, fingerprint string, entries []model.Entry) error
	MaybePurge(ctx context.Context)
}

// Catalog は1リクエスト分のディレクトリエントリ集合を保持する。
type Catalog struct {
	source nsapi.UserSource
	cache  ResultCache // nilでキャッシュ無効

	domain  string
	mode    Mode
	entries []model.Entry
}

// NewCatalog は新しいカタログを生成する。cacheはnil可。
func NewCatalog(source nsapi.UserSource, resultCache ResultCache, mode Mode) *Catalog {
	return &Catalog{source: source, cache: resultCache, mode: mode}
}

// Load はフィルタ条件に従いユーザー一覧を取得してカタログを構築する。
//
// キャッシュキーは結合フィルタ全体のフィンガープリントで、ヒット時は
// APIを一切呼ばない。ミス時はsite×departmentの直積で1クエリずつ発行し、
// 内線番号で重複排除（先勝ち）、掲載条件でフィルタした後、
// 姓→名の順（大文字小文字無視）で安定ソートする。
//
// サブクエリの失敗はログして飛ばす。全サブクエリが失敗して1件も
// データが得られなかった場合のみErrUnavailableを返す。
func (c *Catalog) Load(ctx context.Context, domain string, sites, departments []string) error {
	c.domain = domain
	fingerprint := cache.Fingerprint(domain, sites, departments)

	if c.cache != nil {
		c.cache.MaybePurge(ctx)

		cached, ok, err := c.cache.Get(ctx, fingerprint)
		if err != nil {
			slog.Warn("cache read failed, falling back to api",
				"event_id", "DIR_CACHE_READ_ERR",
				"domain", domain,
				"error", err.Error(),
			)
		} else if ok {
			slog.Debug("directory cache hit",
				"event_id", "DIR_CACHE_HIT",
				"domain", domain,
				"entries", len(cached),
			)
			c.entries = cached
			return nil
		}
	}

	queries := buildQueries(sites, departments)

	var merged []model.Entry
	seen := make(map[string]struct{})
	anySucceeded := false

	for _, q := range queries {
		raws, err := c.source.FetchUsers(ctx, domain, q.site, q.department)
		if err != nil {
			slog.Warn("directory sub-query failed",
				"event_id", "DIR_SUBQUERY_ERR",
				"domain", domain,
				"site", q.site,
				"department", q.department,
				"error", err.Error(),
			)
			continue
		}
		anySucceeded = true

		for _, raw := range raws {
			entry, ok := EntryFromRaw(raw)
			if !ok {
				continue
			}
			if _, dup := seen[entry.Extension]; dup {
				continue
			}
			seen[entry.Extension] = struct{}{}
			merged = append(merged, entry)
		}
	}

	if !anySucceeded {
		return ErrUnavailable
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if d := strings.Compare(strings.ToLower(merged[i].LastName), strings.ToLower(merged[j].LastName)); d != 0 {
			return d < 0
		}
		return strings.ToLower(merged[i].FirstName) < strings.ToLower(merged[j].FirstName)
	})

	c.entries = merged

	if c.cache != nil && len(merged) > 0 {
		if err := c.cache.Set(ctx, fingerprint, merged); err != nil {
			// 書き込み失敗は取得済みデータの提供を妨げない
			slog.Warn("cache write failed",
				"event_id", "DIR_CACHE_WRITE_ERR",
				"domain", domain,
				"error", err.Error(),
			)
		}
	}

	slog.Info("directory catalog loaded",
		"event_id", "DIR_LOADED",
		"domain", domain,
		"entries", len(merged),
		"queries", len(queries),
	)
	return nil
}

// Search はモードに応じた数字列の前方一致検索を行う。
// 返り値はカタログのソート順を保つ。
func (c *Catalog) Search(prefix string) []model.Entry {
	var matches []model.Entry
	for _, e := range c.entries {
		var matched bool
		switch c.mode {
		case ModeFirstName:
			matched = strings.HasPrefix(e.FirstDigits, prefix)
		case ModeBoth:
			matched = strings.HasPrefix(e.FirstDigits, prefix) || strings.HasPrefix(e.LastDigits, prefix)
		default:
			matched = strings.HasPrefix(e.LastDigits, prefix)
		}
		if matched {
			matches = append(matches, e)
		}
	}
	return matches
}

// Len はカタログのエントリ数を返す。
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Domain は読み込み済みのドメインを返す。
func (c *Catalog) Domain() string {
	return c.domain
}

// Mode は検索モードを返す。
func (c *Catalog) Mode() Mode {
	return c.mode
}

// query はサブクエリ1件分のフィルタ条件。
type query struct {
	site       string
	department string
}

// buildQueries はフィルタ入力からサブクエリの組を構築する。
// 両方指定なら直積、片方のみならその値ごと、なしなら無条件1件。
func buildQueries(sites, departments []string) []query {
	if len(sites) == 0 {
		sites = []string{""}
	}
	if len(departments) == 0 {
		departments = []string{""}
	}

	queries := make([]query, 0, len(sites)*len(departments))
	for _, s := range sites {
		for _, d := range departments {
			queries = append(queries, query{site: s, department: d})
		}
	}
	return queries
}
