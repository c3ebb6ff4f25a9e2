package intake

import "sync/atomic"

// Preview holds a selected file for display and upload. It stands in for the
// browser object URL of the original UI: a manually scoped resource where
// every path that replaces or discards it must release the previous one
// first. The flows enforce that at most one preview is live per flow.
type Preview struct {
	name     string
	data     []byte
	released atomic.Bool
}

func NewPreview(name string, data []byte) *Preview {
	return &Preview{name: name, data: data}
}

func (p *Preview) Name() string { return p.name }

// Data returns nil once the preview has been released.
func (p *Preview) Data() []byte {
	if p.released.Load() {
		return nil
	}
	return p.data
}

func (p *Preview) Release() {
	if p.released.CompareAndSwap(false, true) {
		p.data = nil
	}
}

func (p *Preview) Released() bool { return p.released.Load() }

// replacePreview releases the old preview, if any, before installing the new
// one.
func replacePreview(slot **Preview, next *Preview) {
	if *slot != nil {
		(*slot).Release()
	}
	*slot = next
}
