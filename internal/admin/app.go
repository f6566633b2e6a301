// Package admin はキャッシュとセッションの運用管理TUIを提供する。
package admin

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// ページ名
const (
	pageMenu     = "menu"
	pageCache    = "cache"
	pageSessions = "sessions"
)

// App はTUIアプリケーションを管理する。
type App struct {
	app       *tview.Application
	pages     *tview.Pages
	statusBar *tview.TextView

	cacheView   *CacheView
	sessionView *SessionView
}

// NewApp は新しいAppを生成する。
func NewApp(cacheView *CacheView, sessionView *SessionView) *App {
	app := tview.NewApplication()
	pages := tview.NewPages()

	statusBar := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	statusBar.SetBackgroundColor(tcell.ColorDarkBlue)

	a := &App{
		app:         app,
		pages:       pages,
		statusBar:   statusBar,
		cacheView:   cacheView,
		sessionView: sessionView,
	}

	menu := a.buildMenu()
	pages.AddPage(pageMenu, menu, true, true)
	pages.AddPage(pageCache, cacheView.Root(), true, false)
	pages.AddPage(pageSessions, sessionView.Root(), true, false)

	cacheView.SetStatus(a.setStatus)
	cacheView.SetOnBack(func() { a.switchTo(pageMenu) })
	sessionView.SetStatus(a.setStatus)
	sessionView.SetOnBack(func() { a.switchTo(pageMenu) })

	layout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(pages, 0, 1, true).
		AddItem(statusBar, 1, 0, false)

	app.SetRoot(layout, true).EnableMouse(false)
	return a
}

// Run はアプリケーションを実行する。
func (a *App) Run() error {
	return a.app.Run()
}

func (a *App) buildMenu() *tview.List {
	list := tview.NewList().
		ShowSecondaryText(true)

	list.AddItem("Cache Management", "List, inspect, and purge directory result caches", '1', func() {
		a.cacheView.Reload()
		a.switchTo(pageCache)
	})
	list.AddItem("Active Sessions", "View in-flight call sessions", '2', func() {
		a.sessionView.Reload()
		a.switchTo(pageSessions)
	})
	list.AddItem("Exit", "Exit the application", 'q', func() {
		a.app.Stop()
	})

	list.SetTitle(" Dial-by-Name Admin ").
		SetTitleAlign(tview.AlignCenter).
		SetBorder(true).
		SetBorderColor(tcell.ColorBlue)

	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEsc || event.Rune() == 'q' {
			a.app.Stop()
			return nil
		}
		return event
	})

	return list
}

func (a *App) switchTo(page string) {
	a.pages.SwitchToPage(page)
}

func (a *App) setStatus(text string) {
	a.statusBar.SetText(" " + text)
}
