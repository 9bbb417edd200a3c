// Package menu is the bar along the top of the screen: the manager's label,
// which opens the palette, followed by one entry per configured launcher.
package menu

import (
	"image"
	"image/color"
	"image/draw"
	"log/slog"

	"github.com/BurntSushi/xgb/xproto"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/macwm/macwm/internal/geom"
	"github.com/macwm/macwm/internal/wm"
	"github.com/macwm/macwm/internal/x11"
)

// Display is the part of the X connection the bar needs.
type Display interface {
	CreateWindow(spec x11.WindowSpec) (xproto.Window, error)
	MapWindow(win xproto.Window) error
	DestroyWindow(win xproto.Window) error
	RootGeometry() geom.Rect
	PutImage(win xproto.Window, img image.Image) error
}

// Item is a launcher entry.
type Item struct {
	Label   string
	Command string
}

// Config describes the bar.
type Config struct {
	Height     int
	Label      string
	Background uint32
	Foreground uint32
	Items      []Item
}

// Actions are run when an entry is clicked.
type Actions struct {
	Launch  func(command string)
	Palette func()
}

const entryPad = 10

// Bar is the menu bar window.
type Bar struct {
	d       Display
	log     *slog.Logger
	cfg     Config
	actions Actions
	win     xproto.Window
	width   int
	entries []entry
}

type entry struct {
	label string
	span  [2]int // [start, end) in pixels
}

var _ wm.Menu = (*Bar)(nil)

// New creates, maps and paints the bar across the top of the root window.
func New(d Display, root xproto.Window, cfg Config, actions Actions, logger *slog.Logger) (*Bar, error) {
	if logger == nil {
		logger = slog.Default()
	}
	width := d.RootGeometry().Width
	win, err := d.CreateWindow(x11.WindowSpec{
		Parent:     root,
		Bounds:     geom.R(0, 0, width, cfg.Height),
		Background: cfg.Background,
		EventMask:  xproto.EventMaskExposure | xproto.EventMaskButtonPress,
	})
	if err != nil {
		return nil, err
	}
	if err := d.MapWindow(win); err != nil {
		d.DestroyWindow(win)
		return nil, err
	}

	b := &Bar{
		d:       d,
		log:     logger.With("component", "menu"),
		cfg:     cfg,
		actions: actions,
		win:     win,
		width:   width,
		entries: layout(cfg),
	}
	b.Draw()
	return b, nil
}

func layout(cfg Config) []entry {
	labels := make([]string, 0, len(cfg.Items)+1)
	labels = append(labels, cfg.Label)
	for _, it := range cfg.Items {
		labels = append(labels, it.Label)
	}

	entries := make([]entry, 0, len(labels))
	x := 0
	for _, l := range labels {
		w := font.MeasureString(basicfont.Face7x13, l).Ceil() + 2*entryPad
		entries = append(entries, entry{label: l, span: [2]int{x, x + w}})
		x += w
	}
	return entries
}

// Window returns the bar window.
func (b *Bar) Window() xproto.Window { return b.win }

// Height returns the bar height in pixels.
func (b *Bar) Height() int { return b.cfg.Height }

// EntryAt returns the index of the entry under x: 0 for the label, i for
// Items[i-1], or -1.
func (b *Bar) EntryAt(x int) int {
	for i, e := range b.entries {
		if x >= e.span[0] && x < e.span[1] {
			return i
		}
	}
	return -1
}

// OnButtonPress runs the clicked entry's action.
func (b *Bar) OnButtonPress(ev xproto.ButtonPressEvent) {
	if ev.Detail != xproto.ButtonIndex1 {
		return
	}
	i := b.EntryAt(int(ev.EventX))
	switch {
	case i == 0:
		b.log.Debug("menu label clicked")
		if b.actions.Palette != nil {
			b.actions.Palette()
		}
	case i > 0:
		item := b.cfg.Items[i-1]
		b.log.Info("launching", "item", item.Label, "command", item.Command)
		if b.actions.Launch != nil {
			b.actions.Launch(item.Command)
		}
	}
}

func (b *Bar) OnExpose(xproto.ExposeEvent) {
	b.Draw()
}

// Draw repaints the bar.
func (b *Bar) Draw() {
	if err := b.d.PutImage(b.win, b.render()); err != nil {
		b.log.Debug("paint failed", "error", err)
	}
}

func (b *Bar) render() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, max(b.width, 1), max(b.cfg.Height, 1)))
	draw.Draw(img, img.Bounds(), image.NewUniform(rgb(b.cfg.Background)), image.Point{}, draw.Src)

	face := basicfont.Face7x13
	m := face.Metrics()
	baseline := (b.cfg.Height + m.Ascent.Ceil() - m.Descent.Ceil()) / 2
	d := &font.Drawer{Dst: img, Src: image.NewUniform(rgb(b.cfg.Foreground)), Face: face}
	for i, e := range b.entries {
		d.Dot = fixed.P(e.span[0]+entryPad, baseline)
		d.DrawString(e.label)
		if i == 0 {
			// Emboldened label.
			d.Dot = fixed.P(e.span[0]+entryPad+1, baseline)
			d.DrawString(e.label)
		}
	}
	return img
}

func rgb(pixel uint32) color.RGBA {
	return color.RGBA{uint8(pixel >> 16), uint8(pixel >> 8), uint8(pixel), 0xff}
}
