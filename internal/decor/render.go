package decor

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/macwm/macwm/internal/wm"
)

// Button colors, left to right.
var buttonColors = map[wm.DecorationAction]color.RGBA{
	wm.ActionClose:    {0xff, 0x5f, 0x57, 0xff},
	wm.ActionMinimize: {0xfe, 0xbc, 0x2e, 0xff},
	wm.ActionMaximize: {0x28, 0xc8, 0x40, 0xff},
}

var buttonOrder = []wm.DecorationAction{wm.ActionClose, wm.ActionMinimize, wm.ActionMaximize}

const (
	buttonPad = 4
	buttonGap = 6
)

// Style is the title bar look.
type Style struct {
	Height     int
	Background uint32
	Foreground uint32
}

// DefaultStyle matches the default frame.
func DefaultStyle() Style {
	return Style{Height: 22, Background: 0x3c3c3c, Foreground: 0xf0f0f0}
}

func rgb(pixel uint32) color.RGBA {
	return color.RGBA{uint8(pixel >> 16), uint8(pixel >> 8), uint8(pixel), 0xff}
}

// Layout locates the buttons of a title bar height pixels tall.
type Layout struct {
	Height int
}

// Button returns the square occupied by the button for a.
func (l Layout) Button(a wm.DecorationAction) image.Rectangle {
	size := l.buttonSize()
	for i, b := range buttonOrder {
		if b == a {
			x := buttonPad + i*(size+buttonGap)
			return image.Rect(x, buttonPad, x+size, buttonPad+size)
		}
	}
	return image.Rectangle{}
}

func (l Layout) buttonSize() int {
	return max(l.Height-2*buttonPad, 0)
}

// textStart is where the title may begin.
func (l Layout) textStart() int {
	return l.Button(wm.ActionMaximize).Max.X + buttonGap
}

// HitTest returns the button under (x, y), or ActionMove anywhere else on the
// bar.
func (l Layout) HitTest(x, y int) wm.DecorationAction {
	p := image.Pt(x, y)
	for _, a := range buttonOrder {
		if p.In(l.Button(a)) {
			return a
		}
	}
	if x < 0 || y < 0 || y >= l.Height {
		return wm.ActionNone
	}
	return wm.ActionMove
}

// Render draws a title bar width pixels wide. The pressed button, if any, is
// drawn darkened.
func Render(style Style, title string, width int, pressed wm.DecorationAction) *image.RGBA {
	width = max(width, 1)
	height := max(style.Height, 1)
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(rgb(style.Background)), image.Point{}, draw.Src)

	l := Layout{Height: style.Height}
	for _, a := range buttonOrder {
		c := buttonColors[a]
		if a == pressed {
			c = darken(c)
		}
		fillCircle(img, l.Button(a), c)
	}

	face := basicfont.Face7x13
	avail := width - l.textStart() - buttonPad
	title = fit(face, title, avail)
	if title == "" {
		return img
	}
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(rgb(style.Foreground)),
		Face: face,
	}
	textWidth := d.MeasureString(title).Ceil()
	// Centre on the bar, but never over the buttons.
	x := max((width-textWidth)/2, l.textStart())
	ascent := face.Metrics().Ascent.Ceil()
	descent := face.Metrics().Descent.Ceil()
	y := (height + ascent - descent) / 2
	d.Dot = fixed.P(x, y)
	d.DrawString(title)
	return img
}

// fit shortens s with a trailing "..." until it fits in width pixels.
func fit(face font.Face, s string, width int) string {
	if width <= 0 {
		return ""
	}
	if font.MeasureString(face, s).Ceil() <= width {
		return s
	}
	runes := []rune(s)
	for n := len(runes) - 1; n > 0; n-- {
		candidate := string(runes[:n]) + "..."
		if font.MeasureString(face, candidate).Ceil() <= width {
			return candidate
		}
	}
	return ""
}

func darken(c color.RGBA) color.RGBA {
	return color.RGBA{c.R / 3 * 2, c.G / 3 * 2, c.B / 3 * 2, c.A}
}

func fillCircle(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	if r.Empty() {
		return
	}
	// Work in doubled coordinates so the centre of an even-sized box is exact.
	cx, cy := r.Min.X*2+r.Dx(), r.Min.Y*2+r.Dy()
	rad := r.Dx()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			dx, dy := x*2+1-cx, y*2+1-cy
			if dx*dx+dy*dy <= rad*rad {
				img.SetRGBA(x, y, c)
			}
		}
	}
}
