package main

import (
	"context"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/borgmon/rift-notifier/pkg/audio"
	"github.com/borgmon/rift-notifier/pkg/platform"
	"github.com/borgmon/rift-notifier/pkg/ui/components"
)

const dismissHold = time.Second

// alertWindows shows every alert in a window brought to the front. Only
// one alert window is open at a time; a new alert replaces the old one.
type alertWindows struct {
	app    fyne.App
	player *audio.Player

	mu      sync.Mutex
	current fyne.Window
}

func newAlertWindows(app fyne.App, player *audio.Player) *alertWindows {
	return &alertWindows{app: app, player: player}
}

// Notify implements alert.Notifier
func (aw *alertWindows) Notify(_ context.Context, title, body string) error {
	fyne.Do(func() { aw.show(title, body) })
	return nil
}

func (aw *alertWindows) show(title, body string) {
	aw.mu.Lock()
	previous := aw.current
	aw.mu.Unlock()
	if previous != nil {
		previous.Close()
	}

	w := aw.app.NewWindow(title)
	w.SetContent(aw.buildUI(w, title, body))
	w.SetOnClosed(func() {
		aw.mu.Lock()
		if aw.current == w {
			aw.current = nil
		}
		aw.mu.Unlock()
	})

	aw.mu.Lock()
	aw.current = w
	aw.mu.Unlock()

	w.CenterOnScreen()
	w.Show()
	w.RequestFocus()
	if !platform.IsAppActive() {
		platform.ActivateApp()
	}
}

func (aw *alertWindows) buildUI(w fyne.Window, title, body string) fyne.CanvasObject {
	heading := canvas.NewText(title, nil)
	heading.TextSize = 28
	heading.TextStyle = fyne.TextStyle{Bold: true}
	heading.Alignment = fyne.TextAlignCenter

	message := widget.NewLabel(body)
	message.Wrapping = fyne.TextWrapWord
	message.Alignment = fyne.TextAlignCenter

	dismiss := components.NewHoldButton("Dismiss (hold)", dismissHold, func() {
		if aw.player != nil {
			aw.player.Stop()
		}
		fyne.Do(w.Close)
	})

	content := container.NewVBox(
		container.NewPadded(heading),
		message,
		widget.NewSeparator(),
		container.NewCenter(dismiss),
	)
	return container.NewPadded(container.NewCenter(content))
}
