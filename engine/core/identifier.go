package core

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// NewUUID generates the identifier used by every definition.
func NewUUID() string {
	return uuid.New().String()
}

// InvalidID is never handed out by an IdentifierPool.
const InvalidID uint32 = 0

// IdentifierPool hands out small integer handles for native resources
// (texture ids and the like). Released slots are reused.
type IdentifierPool struct {
	mu     sync.Mutex
	owners []interface{}
}

func NewIdentifierPool(capacity int) *IdentifierPool {
	// slot 0 is reserved for InvalidID
	owners := make([]interface{}, 1, capacity+1)
	owners[0] = struct{}{}
	return &IdentifierPool{owners: owners}
}

func (p *IdentifierPool) Acquire(owner interface{}) uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := 1; i < len(p.owners); i++ {
		// Existing free spot. Take it.
		if p.owners[i] == nil {
			p.owners[i] = owner
			return uint32(i)
		}
	}
	p.owners = append(p.owners, owner)
	return uint32(len(p.owners) - 1)
}

func (p *IdentifierPool) Release(id uint32) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if id == InvalidID || int(id) >= len(p.owners) {
		return fmt.Errorf("identifier %d out of range (max=%d)", id, len(p.owners)-1)
	}
	if p.owners[id] == nil {
		return fmt.Errorf("identifier %d already released", id)
	}
	p.owners[id] = nil
	return nil
}

// Owner returns what was registered for id, or nil.
func (p *IdentifierPool) Owner(id uint32) interface{} {
	p.mu.Lock()
	defer p.mu.Unlock()

	if id == InvalidID || int(id) >= len(p.owners) {
		return nil
	}
	return p.owners[id]
}

// InUse counts the live handles.
func (p *IdentifierPool) InUse() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, o := range p.owners[1:] {
		if o != nil {
			n++
		}
	}
	return n
}
