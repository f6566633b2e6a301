package callflow

import "github.com/jeremyapple/netsapiens-dialbyname-directory/internal/model"

// pageWindow は1ページ分の表示範囲を計算する。
//
// ページサイズは maxResults-1（最後の1枠を「9で次へ」に予約）だが、
// 残り件数がmaxResults以下になったページは次ページが不要なため、
// 予約枠まで使って全件を表示する。
type pageWindow struct {
	entries []model.Entry
	hasMore bool
	// hasMore時の残り件数（"9 for N more options" 用）
	remaining int
}

func perPageOf(maxResults int) int {
	perPage := maxResults - 1
	if perPage < 1 {
		perPage = 1
	}
	return perPage
}

func windowOf(all []model.Entry, page, maxResults int) pageWindow {
	perPage := perPageOf(maxResults)
	start := page * perPage
	if page < 0 || start >= len(all) {
		return pageWindow{}
	}

	remaining := len(all) - start
	if remaining <= maxResults {
		return pageWindow{entries: all[start:]}
	}
	return pageWindow{
		entries:   all[start : start+perPage],
		hasMore:   true,
		remaining: remaining - perPage,
	}
}

// pageCount は総ページ数を返す。最終ページの拡張分を織り込む。
func pageCount(total, maxResults int) int {
	if total == 0 {
		return 0
	}
	if total <= maxResults {
		return 1
	}
	perPage := perPageOf(maxResults)
	return 1 + (total-maxResults+perPage-1)/perPage
}
