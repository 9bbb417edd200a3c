package menu

import (
	"image"
	"io"
	"log/slog"
	"testing"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/macwm/macwm/internal/geom"
	"github.com/macwm/macwm/internal/x11"
)

type fakeDisplay struct {
	spec    x11.WindowSpec
	mapped  bool
	painted int
	img     image.Image
}

func (f *fakeDisplay) CreateWindow(spec x11.WindowSpec) (xproto.Window, error) {
	f.spec = spec
	return 4000, nil
}
func (f *fakeDisplay) MapWindow(xproto.Window) error     { f.mapped = true; return nil }
func (f *fakeDisplay) DestroyWindow(xproto.Window) error { return nil }
func (f *fakeDisplay) RootGeometry() geom.Rect           { return geom.R(0, 0, 1024, 768) }
func (f *fakeDisplay) PutImage(_ xproto.Window, img image.Image) error {
	f.painted++
	f.img = img
	return nil
}

func newBar(t *testing.T) (*Bar, *fakeDisplay, *[]string) {
	t.Helper()
	d := &fakeDisplay{}
	var log []string
	bar, err := New(d, 1, Config{
		Height:     20,
		Label:      "macwm",
		Background: 0xeeeeee,
		Foreground: 0x000000,
		Items:      []Item{{Label: "Terminal", Command: "xterm"}, {Label: "Web", Command: "firefox"}},
	}, Actions{
		Launch:  func(c string) { log = append(log, "launch "+c) },
		Palette: func() { log = append(log, "palette") },
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return bar, d, &log
}

func TestNewSpansRoot(t *testing.T) {
	bar, d, _ := newBar(t)
	if bar.Window() != 4000 || !d.mapped || d.painted != 1 {
		t.Fatalf("window=%d mapped=%v painted=%d", bar.Window(), d.mapped, d.painted)
	}
	if d.spec.Parent != 1 || d.spec.Bounds != geom.R(0, 0, 1024, 20) {
		t.Fatalf("spec = %+v", d.spec)
	}
	if d.img.Bounds() != image.Rect(0, 0, 1024, 20) {
		t.Fatalf("image bounds = %v", d.img.Bounds())
	}
	if bar.Height() != 20 {
		t.Fatalf("height = %d, want 20", bar.Height())
	}
}

func TestEntryLayout(t *testing.T) {
	bar, _, _ := newBar(t)
	// 7px glyphs plus 10px padding either side.
	// "macwm" [0,55) "Terminal" [55,131) "Web" [131,172)
	tests := []struct {
		x    int
		want int
	}{
		{0, 0}, {54, 0}, {55, 1}, {130, 1}, {131, 2}, {171, 2}, {172, -1}, {900, -1},
	}
	for _, tt := range tests {
		if got := bar.EntryAt(tt.x); got != tt.want {
			t.Errorf("EntryAt(%d) = %d, want %d", tt.x, got, tt.want)
		}
	}
}

func TestButtonPressRunsActions(t *testing.T) {
	bar, d, log := newBar(t)
	for _, x := range []int16{5, 60, 140, 600} {
		bar.OnButtonPress(xproto.ButtonPressEvent{Event: bar.Window(), Detail: 1, EventX: x})
	}
	bar.OnButtonPress(xproto.ButtonPressEvent{Event: bar.Window(), Detail: 3, EventX: 5})

	want := []string{"palette", "launch xterm", "launch firefox"}
	if len(*log) != len(want) {
		t.Fatalf("actions = %v, want %v", *log, want)
	}
	for i := range want {
		if (*log)[i] != want[i] {
			t.Fatalf("actions = %v, want %v", *log, want)
		}
	}

	bar.OnExpose(xproto.ExposeEvent{Window: bar.Window()})
	if d.painted != 2 {
		t.Fatalf("painted=%d", d.painted)
	}
}
