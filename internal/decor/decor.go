// Package decor draws title bars inside frames: a close, minimize and
// maximize button on the left and the client's title in the middle.
package decor

import (
	"image"
	"log/slog"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/macwm/macwm/internal/geom"
	"github.com/macwm/macwm/internal/wm"
	"github.com/macwm/macwm/internal/x11"
)

// Display is the part of the X connection a title bar needs.
// *x11.Connection implements it.
type Display interface {
	CreateWindow(spec x11.WindowSpec) (xproto.Window, error)
	MapWindow(win xproto.Window) error
	DestroyWindow(win xproto.Window) error
	ResizeWindow(win xproto.Window, s geom.Size) error
	PutImage(win xproto.Window, img image.Image) error
}

const barEventMask = xproto.EventMaskExposure |
	xproto.EventMaskButtonPress |
	xproto.EventMaskButtonRelease |
	xproto.EventMaskButtonMotion

// Decoration is one client's title bar.
type Decoration struct {
	d      Display
	log    *slog.Logger
	style  Style
	layout Layout

	client, frame, bar xproto.Window

	title   string
	width   int
	pressed wm.DecorationAction
}

var _ wm.Decoration = (*Decoration)(nil)

// New creates and maps the title bar window along the top of frame.
func New(d Display, style Style, client, frame xproto.Window, title string, width int, logger *slog.Logger) (*Decoration, error) {
	if logger == nil {
		logger = slog.Default()
	}
	bar, err := d.CreateWindow(x11.WindowSpec{
		Parent:     frame,
		Bounds:     geom.R(0, 0, width, style.Height),
		Background: style.Background,
		EventMask:  barEventMask,
	})
	if err != nil {
		return nil, err
	}
	if err := d.MapWindow(bar); err != nil {
		d.DestroyWindow(bar)
		return nil, err
	}

	deco := &Decoration{
		d:      d,
		log:    logger,
		style:  style,
		layout: Layout{Height: style.Height},
		client: client,
		frame:  frame,
		bar:    bar,
		title:  title,
		width:  width,
	}
	deco.Draw()
	return deco, nil
}

// NewFactory returns a constructor the window manager calls for every
// framed client.
func NewFactory(d Display, style Style, logger *slog.Logger) wm.DecorationFactory {
	return func(client, frame xproto.Window, title string, width int) (wm.Decoration, error) {
		return New(d, style, client, frame, title, width, logger)
	}
}

func (t *Decoration) Frame() xproto.Window    { return t.frame }
func (t *Decoration) Client() xproto.Window   { return t.client }
func (t *Decoration) TitleBar() xproto.Window { return t.bar }

// Owns reports whether win is the title bar.
func (t *Decoration) Owns(win xproto.Window) bool {
	return win == t.bar
}

// Draw repaints the whole bar.
func (t *Decoration) Draw() {
	img := Render(t.style, t.title, t.width, t.pressed)
	if err := t.d.PutImage(t.bar, img); err != nil {
		t.log.Debug("title bar paint failed", "client", t.client, "error", err)
	}
}

func (t *Decoration) SetTitle(title string) {
	if title == t.title {
		return
	}
	t.title = title
	t.Draw()
}

// Resize follows the client width.
func (t *Decoration) Resize(width int) {
	width = max(width, 1)
	if width == t.width {
		return
	}
	t.width = width
	if err := t.d.ResizeWindow(t.bar, geom.Sz(width, t.style.Height)); err != nil {
		t.log.Debug("title bar resize failed", "client", t.client, "error", err)
	}
	t.Draw()
}

// OnButtonPress maps a click on the bar to an action. Buttons stay drawn
// pressed until the release.
func (t *Decoration) OnButtonPress(ev xproto.ButtonPressEvent) wm.DecorationAction {
	if ev.Event != t.bar || ev.Detail != xproto.ButtonIndex1 {
		return wm.ActionNone
	}
	action := t.layout.HitTest(int(ev.EventX), int(ev.EventY))
	if action != wm.ActionMove && action != wm.ActionNone {
		t.pressed = action
		t.Draw()
	}
	return action
}

func (t *Decoration) OnButtonRelease(ev xproto.ButtonReleaseEvent) {
	if t.pressed == wm.ActionNone {
		return
	}
	t.pressed = wm.ActionNone
	t.Draw()
}

// OnMotionNotify releases a pressed button once the pointer leaves it.
func (t *Decoration) OnMotionNotify(ev xproto.MotionNotifyEvent) {
	if t.pressed == wm.ActionNone || ev.Event != t.bar {
		return
	}
	if t.layout.HitTest(int(ev.EventX), int(ev.EventY)) != t.pressed {
		t.pressed = wm.ActionNone
		t.Draw()
	}
}

// Destroy removes the bar window. The frame may already be gone.
func (t *Decoration) Destroy() {
	if err := t.d.DestroyWindow(t.bar); err != nil {
		t.log.Debug("title bar destroy failed", "client", t.client, "error", err)
	}
}
