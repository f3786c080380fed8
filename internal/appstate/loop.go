package appstate

import (
	"context"
	"image"
	"log"
	"sync"
	"time"

	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/annotator/internal/annotation"
	"github.com/example/annotator/internal/editor"
)

// frameDropThreshold specifies how many consecutive frames can be canceled
// before a frame is forced to completion.
const frameDropThreshold = 10

// loadedEvent delivers the result of the background Source to the event
// loop.
type loadedEvent struct {
	img *annotation.CanvasImage
	err error
}

func initialSize(img *annotation.CanvasImage) image.Point {
	w, h := editor.DefaultCanvasWidth, editor.DefaultCanvasHeight
	if img != nil {
		w = max(w, min(int(img.Width), 1600))
		h = max(h, min(int(img.Height), 1000))
	}
	return image.Point{w, h + statusHeight}
}

// Main is the shiny entry point. It owns the session and never returns
// until the window is closed.
func (a *AppState) Main(s screen.Screen) {
	sess := a.sess
	dim := initialSize(sess.ed.Image())
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: dim.X, Height: dim.Y, Title: a.Title})
	if err != nil {
		log.Fatalf("new window: %v", err)
	}
	defer w.Release()
	defer a.notifyClose()

	sess.wake = func(d time.Duration) {
		time.AfterFunc(d, func() { w.Send(paint.Event{}) })
	}

	width, height := dim.X, dim.Y
	sess.ed.SetCanvasSize(width, height-statusHeight)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	if a.source != nil {
		sess.setMessage("Loading image...")
		go func() {
			img, err := a.source(ctx)
			if ctx.Err() == nil {
				w.Send(loadedEvent{img: img, err: err})
			}
		}()
	}

	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	var dropCount int
	paintCh := make(chan paintState, 1)
	defer close(paintCh)
	go func() {
		for st := range paintCh {
			pctx, cancel := context.WithCancel(ctx)
			paintMu.Lock()
			paintCancel = cancel
			paintMu.Unlock()
			drawFrame(pctx, s, w, a.renderer, st)
			paintMu.Lock()
			paintCancel = nil
			if pctx.Err() == nil {
				dropCount = 0
			}
			paintMu.Unlock()
			cancel()
		}
	}()

	for {
		repaint := false
		switch e := w.NextEvent().(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				paintMu.Lock()
				if paintCancel != nil {
					paintCancel()
				}
				paintMu.Unlock()
				return
			}
			if e.Crosses(lifecycle.StageFocused) == lifecycle.CrossOff {
				sess.leave()
				repaint = true
			}
		case size.Event:
			width, height = e.WidthPx, e.HeightPx
			sess.ed.SetCanvasSize(width, height-statusHeight)
			repaint = true
		case loadedEvent:
			if e.err != nil {
				sess.setMessage("load: %v", e.err)
			} else {
				sess.ed.LoadImage(e.img)
				sess.message = ""
			}
			repaint = true
		case paint.Event:
			paintMu.Lock()
			if paintCancel != nil && dropCount < frameDropThreshold {
				paintCancel()
				dropCount++
			}
			paintMu.Unlock()
			st := sess.snapshot(width, height)
			select {
			case paintCh <- st:
			default:
				<-paintCh
				paintCh <- st
			}
		case mouse.Event:
			if int(e.Y) >= height-statusHeight && e.Direction != mouse.DirRelease {
				if e.Direction == mouse.DirNone {
					sess.leave()
				}
				continue
			}
			repaint = sess.handleMouse(e)
		case key.Event:
			repaint = sess.handleKey(e)
		case error:
			log.Print(e)
		}
		if repaint {
			w.Send(paint.Event{})
		}
	}
}
