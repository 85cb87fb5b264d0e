package ecs

type eventKind int

const (
	eventAdded eventKind = iota
	eventChanged
	eventDisabled
	eventEnabled
	eventDeleted
	eventKindCount
)

// drainOrder is the fixed order in which pending queues are delivered each tick.
var drainOrder = [...]eventKind{eventAdded, eventChanged, eventDisabled, eventEnabled, eventDeleted}

func (k eventKind) String() string {
	switch k {
	case eventAdded:
		return "added"
	case eventChanged:
		return "changed"
	case eventDisabled:
		return "disabled"
	case eventEnabled:
		return "enabled"
	case eventDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

func (k eventKind) notify(o EntityObserver, e *Entity) {
	switch k {
	case eventAdded:
		o.Added(e)
	case eventChanged:
		o.Changed(e)
	case eventDisabled:
		o.Disabled(e)
	case eventEnabled:
		o.Enabled(e)
	case eventDeleted:
		o.Deleted(e)
	}
}

// pendingEvents buffers entity lifecycle events until the System drains them.
// Each queue is double buffered: take hands out the current buffer and swaps in
// the spare, so events queued while a queue is being delivered wait for the next tick.
type pendingEvents struct {
	queues [eventKindCount][]*Entity
	spare  [eventKindCount][]*Entity
}

func (p *pendingEvents) push(kind eventKind, e *Entity) {
	p.queues[kind] = append(p.queues[kind], e)
}

func (p *pendingEvents) take(kind eventKind) []*Entity {
	queued := p.queues[kind]
	p.queues[kind] = p.spare[kind][:0]
	p.spare[kind] = nil
	return queued
}

func (p *pendingEvents) release(kind eventKind, buf []*Entity) {
	clear(buf)
	p.spare[kind] = buf[:0]
}

func (p *pendingEvents) len(kind eventKind) int {
	return len(p.queues[kind])
}
