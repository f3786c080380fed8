//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && !cgo

package clipboard

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// readTimeout bounds how long a paste waits for the selection owner.
const readTimeout = 2 * time.Second

var (
	ownerOnce sync.Once
	ownerErr  error
	owner     *selectionOwner
)

func x11() (*selectionOwner, error) {
	ownerOnce.Do(func() {
		if !hasDisplay() {
			ownerErr = errNoDisplay
			return
		}
		owner, ownerErr = newSelectionOwner()
	})
	return owner, ownerErr
}

func platformReadPNG() ([]byte, error) {
	o, err := x11()
	if err != nil {
		return nil, err
	}
	return o.fetch(o.atoms["image/png"])
}

func platformWritePNG(data []byte) error {
	o, err := x11()
	if err != nil {
		return err
	}
	return o.own("image/png", data)
}

func platformWriteText(text string) error {
	o, err := x11()
	if err != nil {
		return err
	}
	return o.own("UTF8_STRING", []byte(text))
}

// selectionOwner holds a hidden window that answers CLIPBOARD requests for
// whatever was last copied.
type selectionOwner struct {
	conn   *xgb.Conn
	window xproto.Window
	atoms  map[string]xproto.Atom

	mu     sync.RWMutex
	target string
	data   []byte
}

var atomNames = []string{"CLIPBOARD", "TARGETS", "UTF8_STRING", "image/png", "ANNOTATOR_SELECTION"}

func newSelectionOwner() (*selectionOwner, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("x11: %w", err)
	}
	screen := xproto.Setup(conn).DefaultScreen(conn)
	win, err := xproto.NewWindowId(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	err = xproto.CreateWindowChecked(conn, 0, win, screen.Root, 0, 0, 1, 1, 0,
		xproto.WindowClassInputOnly, 0, xproto.CwEventMask, []uint32{xproto.EventMaskPropertyChange}).Check()
	if err != nil {
		conn.Close()
		return nil, err
	}
	o := &selectionOwner{conn: conn, window: win, atoms: make(map[string]xproto.Atom)}
	for _, name := range atomNames {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("intern %s: %w", name, err)
		}
		o.atoms[name] = reply.Atom
	}
	go o.serve()
	return o, nil
}

func (o *selectionOwner) own(target string, data []byte) error {
	o.mu.Lock()
	o.target, o.data = target, append([]byte(nil), data...)
	o.mu.Unlock()
	return xproto.SetSelectionOwnerChecked(o.conn, o.window, o.atoms["CLIPBOARD"], xproto.TimeCurrentTime).Check()
}

func (o *selectionOwner) serve() {
	for {
		ev, err := o.conn.WaitForEvent()
		if err != nil {
			return
		}
		switch e := ev.(type) {
		case xproto.SelectionRequestEvent:
			o.answer(e)
		case xproto.SelectionClearEvent:
			o.mu.Lock()
			o.target, o.data = "", nil
			o.mu.Unlock()
		}
	}
}

func (o *selectionOwner) answer(e xproto.SelectionRequestEvent) {
	o.mu.RLock()
	target, data := o.target, o.data
	o.mu.RUnlock()

	prop := e.Property
	if prop == xproto.AtomNone {
		prop = e.Target
	}
	switch {
	case e.Target == o.atoms["TARGETS"] && target != "":
		offered := []xproto.Atom{o.atoms["TARGETS"], o.atoms[target]}
		buf := make([]byte, 4*len(offered))
		for i, a := range offered {
			xgb.Put32(buf[4*i:], uint32(a))
		}
		xproto.ChangeProperty(o.conn, xproto.PropModeReplace, e.Requestor, prop, xproto.AtomAtom, 32, uint32(len(offered)), buf)
	case target != "" && e.Target == o.atoms[target]:
		xproto.ChangeProperty(o.conn, xproto.PropModeReplace, e.Requestor, prop, e.Target, 8, uint32(len(data)), data)
	default:
		prop = xproto.AtomNone
	}
	reply := xproto.SelectionNotifyEvent{
		Time:      e.Time,
		Requestor: e.Requestor,
		Selection: e.Selection,
		Target:    e.Target,
		Property:  prop,
	}
	_ = xproto.SendEvent(o.conn, false, e.Requestor, 0, string(reply.Bytes()))
}

// fetch converts the CLIPBOARD selection to target on a private connection
// so the owner's event loop is not disturbed.
func (o *selectionOwner) fetch(target xproto.Atom) ([]byte, error) {
	o.mu.RLock()
	local := o.target != "" && o.atoms[o.target] == target
	data := o.data
	o.mu.RUnlock()
	if local {
		return append([]byte(nil), data...), nil
	}

	conn, err := xgb.NewConn()
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	screen := xproto.Setup(conn).DefaultScreen(conn)
	win, err := xproto.NewWindowId(conn)
	if err != nil {
		return nil, err
	}
	err = xproto.CreateWindowChecked(conn, 0, win, screen.Root, 0, 0, 1, 1, 0,
		xproto.WindowClassInputOnly, 0, xproto.CwEventMask, []uint32{xproto.EventMaskPropertyChange}).Check()
	if err != nil {
		return nil, err
	}
	prop := o.atoms["ANNOTATOR_SELECTION"]
	err = xproto.ConvertSelectionChecked(conn, win, o.atoms["CLIPBOARD"], target, prop, xproto.TimeCurrentTime).Check()
	if err != nil {
		return nil, err
	}

	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		for {
			ev, err := conn.WaitForEvent()
			if err != nil {
				done <- result{err: err}
				return
			}
			n, ok := ev.(xproto.SelectionNotifyEvent)
			if !ok {
				continue
			}
			if n.Property == xproto.AtomNone {
				done <- result{err: ErrNoImage}
				return
			}
			reply, perr := xproto.GetProperty(conn, true, win, prop, xproto.GetPropertyTypeAny, 0, (1<<31)-1).Reply()
			if perr != nil {
				done <- result{err: perr}
				return
			}
			done <- result{data: append([]byte(nil), reply.Value...)}
			return
		}
	}()
	select {
	case r := <-done:
		return r.data, r.err
	case <-time.After(readTimeout):
		return nil, errors.New("clipboard owner did not respond")
	}
}
