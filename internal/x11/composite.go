package x11

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/BurntSushi/xgb/composite"
	"github.com/BurntSushi/xgb/damage"
	"github.com/BurntSushi/xgb/shape"
	"github.com/BurntSushi/xgb/xfixes"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/1broseidon/stratum/internal/scene"
)

// maxPutImageBytes keeps every PutImage below the core request size limit.
const maxPutImageBytes = 65535*4 - 64

// Composite redirects all top-level windows off screen, reads their
// content and presents composited frames on the overlay window.
type Composite struct {
	conn *Connection
	log  *slog.Logger

	overlay xproto.Window
	gc      xproto.Gcontext
	depth   byte
	started bool

	damages  map[xproto.Window]damage.Damage
	onDamage func(xid uint32)
}

func NewComposite(conn *Connection, logger *slog.Logger) *Composite {
	if logger == nil {
		logger = slog.Default()
	}
	return &Composite{
		conn:    conn,
		log:     logger,
		damages: make(map[xproto.Window]damage.Damage),
	}
}

// Start takes over compositing. It fails when the extensions are missing
// or another compositor already redirects the root window. onDamage is
// called for every tracked window with new content.
func (c *Composite) Start(onDamage func(xid uint32)) error {
	xu := c.conn.XUtil
	conn := xu.Conn()

	c.depth = xu.Screen().RootDepth
	if c.depth != 24 && c.depth != 32 {
		return fmt.Errorf("unsupported root depth %d", c.depth)
	}

	if err := composite.Init(conn); err != nil {
		return fmt.Errorf("composite extension not available: %w", err)
	}
	if _, err := composite.QueryVersion(conn, 0, 4).Reply(); err != nil {
		return fmt.Errorf("composite version query failed: %w", err)
	}
	if err := xfixes.Init(conn); err != nil {
		return fmt.Errorf("xfixes extension not available: %w", err)
	}
	if _, err := xfixes.QueryVersion(conn, 5, 0).Reply(); err != nil {
		return fmt.Errorf("xfixes version query failed: %w", err)
	}
	if err := damage.Init(conn); err != nil {
		return fmt.Errorf("damage extension not available: %w", err)
	}
	if _, err := damage.QueryVersion(conn, 1, 1).Reply(); err != nil {
		return fmt.Errorf("damage version query failed: %w", err)
	}

	err := composite.RedirectSubwindowsChecked(conn, c.conn.Root, composite.RedirectManual).Check()
	if err != nil {
		return fmt.Errorf("failed to redirect windows (is another compositor running?): %w", err)
	}
	c.started = true

	overlay, err := composite.GetOverlayWindow(conn, c.conn.Root).Reply()
	if err != nil {
		c.Stop()
		return fmt.Errorf("failed to get overlay window: %w", err)
	}
	c.overlay = overlay.OverlayWin

	// The overlay must not take input from the windows it shows.
	region, err := xfixes.NewRegionId(conn)
	if err != nil {
		c.Stop()
		return err
	}
	xfixes.CreateRegion(conn, region, nil)
	xfixes.SetWindowShapeRegion(conn, c.overlay, shape.SkInput, 0, 0, region)
	xfixes.DestroyRegion(conn, region)

	gc, err := xproto.NewGcontextId(conn)
	if err != nil {
		c.Stop()
		return fmt.Errorf("failed to create graphics context: %w", err)
	}
	if err := xproto.CreateGCChecked(conn, gc, xproto.Drawable(c.overlay), 0, nil).Check(); err != nil {
		c.Stop()
		return fmt.Errorf("failed to create graphics context: %w", err)
	}
	c.gc = gc

	c.onDamage = onDamage
	xevent.HookFun(func(_ *xgbutil.XUtil, ev interface{}) bool {
		dn, ok := ev.(damage.NotifyEvent)
		if !ok {
			return true
		}
		damage.Subtract(conn, dn.Damage, 0, 0)
		if c.onDamage != nil {
			c.onDamage(uint32(dn.Drawable))
		}
		return false
	}).Connect(xu)

	c.log.Info("compositing started", "overlay", uint32(c.overlay), "depth", c.depth)
	return nil
}

// Stop gives the screen back to the windows.
func (c *Composite) Stop() {
	if !c.started {
		return
	}
	conn := c.conn.XUtil.Conn()
	for win := range c.damages {
		c.UntrackWindow(uint32(win))
	}
	if c.gc != 0 {
		xproto.FreeGC(conn, c.gc)
		c.gc = 0
	}
	if c.overlay != 0 {
		composite.ReleaseOverlayWindow(conn, c.conn.Root)
		c.overlay = 0
	}
	composite.UnredirectSubwindows(conn, c.conn.Root, composite.RedirectManual)
	c.started = false
	c.log.Info("compositing stopped")
}

// TrackWindow starts damage reporting for a client.
func (c *Composite) TrackWindow(xid uint32) error {
	win := xproto.Window(xid)
	if _, ok := c.damages[win]; ok || !c.started {
		return nil
	}
	conn := c.conn.XUtil.Conn()
	d, err := damage.NewDamageId(conn)
	if err != nil {
		return err
	}
	if err := damage.CreateChecked(conn, d, xproto.Drawable(win), damage.ReportLevelNonEmpty).Check(); err != nil {
		return fmt.Errorf("failed to track damage of 0x%x: %w", xid, err)
	}
	c.damages[win] = d
	return nil
}

func (c *Composite) UntrackWindow(xid uint32) {
	win := xproto.Window(xid)
	d, ok := c.damages[win]
	if !ok {
		return
	}
	// The window may already be gone, which destroys the damage with it.
	damage.Destroy(c.conn.XUtil.Conn(), d)
	delete(c.damages, win)
}

func (c *Composite) Unredirect(xid uint32) error {
	err := composite.UnredirectWindowChecked(c.conn.XUtil.Conn(), xproto.Window(xid), composite.RedirectManual).Check()
	if err != nil {
		return fmt.Errorf("failed to unredirect 0x%x: %w", xid, err)
	}
	return nil
}

func (c *Composite) Redirect(xid uint32) error {
	err := composite.RedirectWindowChecked(c.conn.XUtil.Conn(), xproto.Window(xid), composite.RedirectManual).Check()
	if err != nil {
		return fmt.Errorf("failed to redirect 0x%x: %w", xid, err)
	}
	return nil
}

// WindowImage reads the off-screen content of a redirected window.
func (c *Composite) WindowImage(xid uint32, size image.Point) (*image.RGBA, error) {
	conn := c.conn.XUtil.Conn()
	win := xproto.Window(xid)

	pixmap, err := xproto.NewPixmapId(conn)
	if err != nil {
		return nil, err
	}
	if err := composite.NameWindowPixmapChecked(conn, win, pixmap).Check(); err != nil {
		return nil, fmt.Errorf("failed to name window pixmap: %w", err)
	}
	defer xproto.FreePixmap(conn, pixmap)

	reply, err := xproto.GetImage(
		conn,
		xproto.ImageFormatZPixmap,
		xproto.Drawable(pixmap),
		0, 0,
		uint16(size.X), uint16(size.Y),
		0xffffffff,
	).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get image: %w", err)
	}
	if reply.Depth != 24 && reply.Depth != 32 {
		return nil, fmt.Errorf("unsupported window depth %d", reply.Depth)
	}
	return fromBGRA(reply.Data, size, reply.Depth == 32), nil
}

// Present uploads the parts of frame inside region to the overlay window.
func (c *Composite) Present(frame *image.RGBA, region scene.Region) error {
	if c.overlay == 0 {
		return fmt.Errorf("compositing not started")
	}
	conn := c.conn.XUtil.Conn()
	for _, r := range region.IntersectRect(frame.Bounds()).Rects() {
		rows := max(1, maxPutImageBytes/(r.Dx()*4))
		for y := r.Min.Y; y < r.Max.Y; y += rows {
			band := image.Rect(r.Min.X, y, r.Max.X, min(y+rows, r.Max.Y))
			xproto.PutImage(
				conn,
				xproto.ImageFormatZPixmap,
				xproto.Drawable(c.overlay),
				c.gc,
				uint16(band.Dx()), uint16(band.Dy()),
				int16(band.Min.X), int16(band.Min.Y),
				0, // left pad
				c.depth,
				toBGRA(frame, band),
			)
		}
	}
	conn.Sync()
	return nil
}

// fromBGRA converts ZPixmap data to RGBA. Depth 24 data carries no alpha.
func fromBGRA(data []byte, size image.Point, hasAlpha bool) *image.RGBA {
	img := image.NewRGBA(image.Rectangle{Max: size})
	for i := 0; i+3 < len(data) && i+3 < len(img.Pix); i += 4 {
		img.Pix[i+0] = data[i+2]
		img.Pix[i+1] = data[i+1]
		img.Pix[i+2] = data[i+0]
		if hasAlpha {
			img.Pix[i+3] = data[i+3]
		} else {
			img.Pix[i+3] = 0xff
		}
	}
	return img
}

func toBGRA(img *image.RGBA, r image.Rectangle) []byte {
	out := make([]byte, 0, r.Dx()*r.Dy()*4)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := img.Pix[img.PixOffset(r.Min.X, y):img.PixOffset(r.Max.X, y)]
		for i := 0; i < len(row); i += 4 {
			out = append(out, row[i+2], row[i+1], row[i], row[i+3])
		}
	}
	return out
}
