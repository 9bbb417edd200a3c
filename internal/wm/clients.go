package wm

import (
	"github.com/BurntSushi/xgb/xproto"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ClientTable maps managed client windows to their frames. Iteration follows
// insertion order, which is also the window cycling order. A reverse index
// keeps the mapping a bijection.
type ClientTable struct {
	byClient *orderedmap.OrderedMap[xproto.Window, xproto.Window]
	byFrame  map[xproto.Window]xproto.Window
}

// NewClientTable returns an empty table.
func NewClientTable() *ClientTable {
	return &ClientTable{
		byClient: orderedmap.New[xproto.Window, xproto.Window](),
		byFrame:  make(map[xproto.Window]xproto.Window),
	}
}

// Len returns the number of managed clients.
func (t *ClientTable) Len() int {
	return t.byClient.Len()
}

// Frame returns the frame of client.
func (t *ClientTable) Frame(client xproto.Window) (xproto.Window, bool) {
	return t.byClient.Get(client)
}

// ClientOfFrame returns the client reparented into frame.
func (t *ClientTable) ClientOfFrame(frame xproto.Window) (xproto.Window, bool) {
	c, ok := t.byFrame[frame]
	return c, ok
}

// Has reports whether client is managed.
func (t *ClientTable) Has(client xproto.Window) bool {
	_, ok := t.byClient.Get(client)
	return ok
}

// insert records client → frame. Both must be new to the table.
func (t *ClientTable) insert(client, frame xproto.Window) {
	invariant(!t.Has(client), "client %d already has a frame", client)
	_, shared := t.byFrame[frame]
	invariant(!shared, "frame %d already wraps a client", frame)

	t.byClient.Set(client, frame)
	t.byFrame[frame] = client
}

// remove drops client and returns its frame.
func (t *ClientTable) remove(client xproto.Window) xproto.Window {
	frame, ok := t.byClient.Delete(client)
	invariant(ok, "client %d is not managed", client)
	delete(t.byFrame, frame)
	return frame
}

// Clients returns the managed clients in insertion order.
func (t *ClientTable) Clients() []xproto.Window {
	out := make([]xproto.Window, 0, t.Len())
	for pair := t.byClient.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

// Next walks the table in insertion order starting after from (or at the
// oldest entry when from is not managed), wrapping around at most once, and
// returns the first entry accepted by ok. The walk may end on from itself.
func (t *ClientTable) Next(from xproto.Window, ok func(client, frame xproto.Window) bool) (xproto.Window, xproto.Window, bool) {
	n := t.Len()
	if n == 0 {
		return 0, 0, false
	}

	pair := t.byClient.GetPair(from)
	if pair == nil {
		// Not managed: stepping past the newest entry lands on the oldest.
		pair = t.byClient.Newest()
	}

	for range n {
		pair = pair.Next()
		if pair == nil {
			pair = t.byClient.Oldest()
		}
		if ok(pair.Key, pair.Value) {
			return pair.Key, pair.Value, true
		}
	}
	return 0, 0, false
}
