package ecs

import (
	"iter"
	"slices"

	"github.com/kamstrup/intmap"
	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"
)

// Processor is an Aspect-filtered observer that performs per-tick work over the
// entities it currently matches. Implementations embed an EntityProcessor built
// by one of its constructors and implement the handler its variant requires.
type Processor interface {
	EntityObserver
	processor() *EntityProcessor
}

// EntityHandler is required by sequential, parallel and interval processors.
type EntityHandler interface {
	ProcessEntity(e *Entity) error
}

// BatchHandler is required by batch processors. The slice is only valid for the
// duration of the call and must not be modified.
type BatchHandler interface {
	ProcessEntities(entities []*Entity) error
}

// Inserter is notified when an entity starts matching the processor.
type Inserter interface {
	Inserted(e *Entity)
}

// Remover is notified when an entity stops matching the processor.
type Remover interface {
	Removed(e *Entity)
}

// Beginner runs before the matched entities are processed.
type Beginner interface {
	Begin()
}

// Ender runs after the matched entities have been processed successfully.
type Ender interface {
	End()
}

// ProcessingChecker overrides the default "has matched entities" processing gate.
type ProcessingChecker interface {
	CheckProcessing() bool
}

type iterationMode int

const (
	iterateSequential iterationMode = iota
	iterateParallel
	iterateBatch
)

func (m iterationMode) String() string {
	switch m {
	case iterateSequential:
		return "sequential"
	case iterateParallel:
		return "parallel"
	case iterateBatch:
		return "batch"
	default:
		return "unknown"
	}
}

// EntityProcessor tracks the set of entities matching an Aspect and drives
// iteration over them.
type EntityProcessor struct {
	aspect   Aspect
	mode     iterationMode
	workers  int
	interval float64
	acc      float64

	system  *System
	self    Processor
	name    string
	index   uint32
	passive bool

	actives   []*Entity
	positions *intmap.Map[EntityId, int]
}

// NewEntityProcessor returns a processor that calls ProcessEntity for each
// matched entity in insertion order.
func NewEntityProcessor(aspect Aspect) EntityProcessor {
	return EntityProcessor{aspect: aspect, mode: iterateSequential}
}

// NewParallelProcessor returns a processor that spreads ProcessEntity calls over
// up to workers goroutines. workers <= 0 uses the System's parallelism. There is
// no ordering guarantee, and ProcessEntity may only touch data owned by its entity.
func NewParallelProcessor(aspect Aspect, workers int) EntityProcessor {
	return EntityProcessor{aspect: aspect, mode: iterateParallel, workers: workers}
}

// NewBatchProcessor returns a processor that hands the whole matched set to
// ProcessEntities once per tick.
func NewBatchProcessor(aspect Aspect) EntityProcessor {
	return EntityProcessor{aspect: aspect, mode: iterateBatch}
}

// NewIntervalProcessor returns a sequential processor that only runs once every
// interval seconds of accumulated delta, whether or not it matches any entity.
func NewIntervalProcessor(aspect Aspect, interval float64) EntityProcessor {
	return EntityProcessor{aspect: aspect, mode: iterateSequential, interval: interval}
}

func (p *EntityProcessor) processor() *EntityProcessor {
	return p
}

// System returns the System the processor is registered with.
func (p *EntityProcessor) System() *System {
	return p.system
}

// Aspect returns the aspect the processor matches entities against.
func (p *EntityProcessor) Aspect() Aspect {
	return p.aspect
}

// Index returns the processor index assigned at registration.
func (p *EntityProcessor) Index() uint32 {
	return p.index
}

// Name returns the processor's type name.
func (p *EntityProcessor) Name() string {
	return p.name
}

// IsPassive reports whether the System skips this processor when processing.
// Passive processors still track their matched set.
func (p *EntityProcessor) IsPassive() bool {
	return p.passive
}

// Len returns the number of matched entities.
func (p *EntityProcessor) Len() int {
	return len(p.actives)
}

// Contains reports whether e is in the matched set.
func (p *EntityProcessor) Contains(e *Entity) bool {
	return e.processorBits.Test(uint(p.index)) && e.system == p.system
}

// Entities iterates the matched set in insertion order.
func (p *EntityProcessor) Entities() iter.Seq[*Entity] {
	return func(yield func(*Entity) bool) {
		for _, e := range p.actives {
			if !yield(e) {
				return
			}
		}
	}
}

func (p *EntityProcessor) Added(e *Entity)   { p.check(e) }
func (p *EntityProcessor) Changed(e *Entity) { p.check(e) }
func (p *EntityProcessor) Enabled(e *Entity) { p.check(e) }

// Deleted drops e without re-evaluating the aspect; its components are about to be reclaimed.
func (p *EntityProcessor) Deleted(e *Entity) {
	if p.Contains(e) {
		p.remove(e)
	}
}

func (p *EntityProcessor) Disabled(e *Entity) {
	if p.Contains(e) {
		p.remove(e)
	}
}

func (p *EntityProcessor) attach(s *System, self Processor, name string, index uint32) {
	if p.system != nil {
		panic(eris.Errorf("processor %s is already attached to a system", name))
	}

	switch p.mode {
	case iterateSequential, iterateParallel:
		if _, ok := self.(EntityHandler); !ok {
			panic(eris.Errorf("%s processor %s must implement ProcessEntity", p.mode, name))
		}
	case iterateBatch:
		if _, ok := self.(BatchHandler); !ok {
			panic(eris.Errorf("batch processor %s must implement ProcessEntities", name))
		}
	}

	p.system = s
	p.self = self
	p.name = name
	p.index = index
	if p.positions == nil {
		p.positions = intmap.New[EntityId, int](64)
	}
}

func (p *EntityProcessor) check(e *Entity) {
	contains := p.Contains(e)
	interested := p.aspect.Matches(e.componentBits) && e.IsEnabled()

	if interested && !contains {
		p.insert(e)
	} else if !interested && contains {
		p.remove(e)
	}
}

func (p *EntityProcessor) insert(e *Entity) {
	p.positions.Put(e.id, len(p.actives))
	p.actives = append(p.actives, e)
	e.processorBits.Set(uint(p.index))

	if h, ok := p.self.(Inserter); ok {
		h.Inserted(e)
	}
}

// remove keeps the matched set in insertion order, so it shifts and re-indexes
// every later entry: O(len(actives)) per removal rather than O(1).
func (p *EntityProcessor) remove(e *Entity) {
	pos, ok := p.positions.Get(e.id)
	if ok {
		p.actives = slices.Delete(p.actives, pos, pos+1)
		p.positions.Del(e.id)
		for i := pos; i < len(p.actives); i++ {
			p.positions.Put(p.actives[i].id, i)
		}
	}
	e.processorBits.Clear(uint(p.index))

	if h, ok := p.self.(Remover); ok {
		h.Removed(e)
	}
}

func (p *EntityProcessor) checkProcessing() bool {
	if c, ok := p.self.(ProcessingChecker); ok {
		return c.CheckProcessing()
	}
	if p.interval > 0 {
		p.acc += p.system.delta
		if p.acc < p.interval {
			return false
		}
		p.acc -= p.interval
		return true
	}
	return len(p.actives) > 0
}

// run executes one processing pass. It reports whether the processor ran.
func (p *EntityProcessor) run() (bool, error) {
	if !p.checkProcessing() {
		return false, nil
	}

	if h, ok := p.self.(Beginner); ok {
		h.Begin()
	}

	if err := p.iterate(); err != nil {
		return true, err
	}

	if h, ok := p.self.(Ender); ok {
		h.End()
	}
	return true, nil
}

func (p *EntityProcessor) iterate() error {
	switch p.mode {
	case iterateBatch:
		return p.self.(BatchHandler).ProcessEntities(slices.Clip(p.actives))
	case iterateParallel:
		return p.iterateParallel(p.self.(EntityHandler))
	default:
		h := p.self.(EntityHandler)
		for _, e := range p.actives {
			if err := h.ProcessEntity(e); err != nil {
				return err
			}
		}
		return nil
	}
}

// iterateParallel splits the matched set into contiguous chunks, one per worker,
// and waits for every chunk before returning.
func (p *EntityProcessor) iterateParallel(h EntityHandler) error {
	workers := p.workers
	if workers <= 0 {
		workers = p.system.parallelism
	}
	n := len(p.actives)
	if n == 0 {
		return nil
	}
	workers = min(workers, n)

	chunk := (n + workers - 1) / workers
	var g errgroup.Group
	for start := 0; start < n; start += chunk {
		entities := p.actives[start:min(start+chunk, n)]
		g.Go(func() error {
			for _, e := range entities {
				if err := h.ProcessEntity(e); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}
