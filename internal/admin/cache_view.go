package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/jeremyapple/netsapiens-dialbyname-directory/internal/cache"
)

const opTimeout = 5 * time.Second

// CacheView はキャッシュレコードの一覧と削除操作を提供する。
type CacheView struct {
	cache  *cache.Cache
	table  *tview.Table
	status func(string)
	onBack func()
}

// NewCacheView は新しいCacheViewを生成する。
func NewCacheView(c *cache.Cache) *CacheView {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetFixed(1, 0)
	table.SetTitle(" Directory Result Cache  [p]urge expired  [a]ll purge  [r]eload  [Esc]back ").
		SetTitleAlign(tview.AlignCenter).
		SetBorder(true).
		SetBorderColor(tcell.ColorBlue)

	v := &CacheView{cache: c, table: table}

	table.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch {
		case event.Key() == tcell.KeyEsc:
			if v.onBack != nil {
				v.onBack()
			}
			return nil
		case event.Rune() == 'r':
			v.Reload()
			return nil
		case event.Rune() == 'p':
			v.purgeExpired()
			return nil
		case event.Rune() == 'a':
			v.purgeAll()
			return nil
		case event.Rune() == 'd':
			v.deleteSelected()
			return nil
		}
		return event
	})

	return v
}

// Root は表示用のプリミティブを返す。
func (v *CacheView) Root() tview.Primitive {
	return v.table
}

// SetStatus はステータスバー更新関数を設定する。
func (v *CacheView) SetStatus(f func(string)) {
	v.status = f
}

// SetOnBack は戻る操作のコールバックを設定する。
func (v *CacheView) SetOnBack(f func()) {
	v.onBack = f
}

// Reload はキャッシュ一覧を再取得して表示を更新する。
func (v *CacheView) Reload() {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	infos, err := v.cache.List(ctx)
	if err != nil {
		v.report(fmt.Sprintf("list failed: %v", err))
		return
	}

	v.table.Clear()
	headers := []string{"Fingerprint", "Entries", "Expires", "State"}
	for col, h := range headers {
		v.table.SetCell(0, col, tview.NewTableCell(h).
			SetTextColor(tcell.ColorYellow).
			SetSelectable(false))
	}

	now := time.Now()
	for row, info := range infos {
		state := "valid"
		color := tcell.ColorWhite
		if info.Expires.Before(now) {
			state = "expired"
			color = tcell.ColorRed
		}
		v.table.SetCell(row+1, 0, tview.NewTableCell(info.Fingerprint).SetTextColor(color).SetReference(info.Fingerprint))
		v.table.SetCell(row+1, 1, tview.NewTableCell(fmt.Sprintf("%d", info.Entries)).SetTextColor(color))
		v.table.SetCell(row+1, 2, tview.NewTableCell(info.Expires.Format("2006-01-02 15:04:05")).SetTextColor(color))
		v.table.SetCell(row+1, 3, tview.NewTableCell(state).SetTextColor(color))
	}

	stats, err := v.cache.Stats(ctx)
	if err == nil {
		v.report(fmt.Sprintf("%d records (%d expired)", stats.Total, stats.Expired))
	}
}

func (v *CacheView) purgeExpired() {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	n, err := v.cache.PurgeExpired(ctx)
	if err != nil {
		v.report(fmt.Sprintf("purge failed: %v", err))
		return
	}
	v.report(fmt.Sprintf("purged %d expired records", n))
	v.Reload()
}

func (v *CacheView) purgeAll() {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	n, err := v.cache.ClearAll(ctx)
	if err != nil {
		v.report(fmt.Sprintf("purge failed: %v", err))
		return
	}
	v.report(fmt.Sprintf("purged all %d records", n))
	v.Reload()
}

func (v *CacheView) deleteSelected() {
	row, _ := v.table.GetSelection()
	cell := v.table.GetCell(row, 0)
	if cell == nil || cell.GetReference() == nil {
		return
	}
	fingerprint, ok := cell.GetReference().(string)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := v.cache.Clear(ctx, fingerprint); err != nil {
		v.report(fmt.Sprintf("delete failed: %v", err))
		return
	}
	v.report(fmt.Sprintf("deleted %s", fingerprint))
	v.Reload()
}

func (v *CacheView) report(text string) {
	if v.status != nil {
		v.status(text)
	}
}
