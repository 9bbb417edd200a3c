package x11

import (
	"image"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xgraphics"
)

// PutImage paints img as the background of win and shows it. The image is
// converted to the server's pixel format and freed once painted.
func (c *Connection) PutImage(win xproto.Window, img image.Image) error {
	ximg := xgraphics.NewConvert(c.XUtil, img)
	defer ximg.Destroy()

	if err := ximg.XSurfaceSet(win); err != nil {
		return err
	}
	ximg.XDraw()
	ximg.XPaint(win)
	return nil
}
