package ecs

// identityPool hands out entity ids. Freed ids are reused most-recent-first
// before any fresh id is issued.
type identityPool struct {
	freeList []EntityId
	nextId   EntityId
}

func newIdentityPool(capacity int) *identityPool {
	return &identityPool{
		freeList: make([]EntityId, 0, capacity/4),
	}
}

func (p *identityPool) checkout() EntityId {
	if n := len(p.freeList); n > 0 {
		id := p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
		return id
	}
	id := p.nextId
	p.nextId++
	return id
}

func (p *identityPool) checkin(id EntityId) {
	p.freeList = append(p.freeList, id)
}

func (p *identityPool) free() int {
	return len(p.freeList)
}
