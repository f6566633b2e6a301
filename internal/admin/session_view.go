package admin

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/jeremyapple/netsapiens-dialbyname-directory/internal/session"
)

// SessionView は進行中の通話セッションの一覧を提供する。
type SessionView struct {
	store  *session.ValkeyStore
	table  *tview.Table
	status func(string)
	onBack func()
}

// NewSessionView は新しいSessionViewを生成する。
func NewSessionView(store *session.ValkeyStore) *SessionView {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetFixed(1, 0)
	table.SetTitle(" Active Call Sessions  [r]eload  [Esc]back ").
		SetTitleAlign(tview.AlignCenter).
		SetBorder(true).
		SetBorderColor(tcell.ColorBlue)

	v := &SessionView{store: store, table: table}

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
		}
		return event
	})

	return v
}

// Root は表示用のプリミティブを返す。
func (v *SessionView) Root() tview.Primitive {
	return v.table
}

// SetStatus はステータスバー更新関数を設定する。
func (v *SessionView) SetStatus(f func(string)) {
	v.status = f
}

// SetOnBack は戻る操作のコールバックを設定する。
func (v *SessionView) SetOnBack(f func()) {
	v.onBack = f
}

// Reload はセッション一覧を再取得して表示を更新する。
func (v *SessionView) Reload() {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	ids, err := v.store.List(ctx)
	if err != nil {
		v.report(fmt.Sprintf("list failed: %v", err))
		return
	}

	v.table.Clear()
	headers := []string{"Call ID", "State", "Digits", "Matches", "Page"}
	for col, h := range headers {
		v.table.SetCell(0, col, tview.NewTableCell(h).
			SetTextColor(tcell.ColorYellow).
			SetSelectable(false))
	}

	row := 1
	for _, id := range ids {
		call, err := v.store.Get(ctx, id)
		if err != nil {
			// 表示中に消えたセッションは飛ばす
			continue
		}
		v.table.SetCell(row, 0, tview.NewTableCell(id))
		v.table.SetCell(row, 1, tview.NewTableCell(string(call.State)))
		v.table.SetCell(row, 2, tview.NewTableCell(call.AccumulatedDigits))
		v.table.SetCell(row, 3, tview.NewTableCell(fmt.Sprintf("%d", len(call.AllMatches))))
		v.table.SetCell(row, 4, tview.NewTableCell(fmt.Sprintf("%d", call.CurrentPage)))
		row++
	}

	v.report(fmt.Sprintf("%d active sessions", row-1))
}

func (v *SessionView) report(text string) {
	if v.status != nil {
		v.status(text)
	}
}
