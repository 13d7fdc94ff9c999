package deck

import (
	"github.com/relaypulse/beatkeeper/internal/model"
)

// indexer allocates dense record ids in [0, model.RecordCap). It lives
// inside the deck goroutine only; nothing else touches it, so it needs no
// locking of its own.
type indexer struct {
	inUse [model.RecordCap]bool
}

// next returns the smallest id not currently in use, or
// model.KindCapacityExhausted if every id is taken.
func (ix *indexer) next() (model.RecordId, error) {
	for i := 0; i < model.RecordCap; i++ {
		if !ix.inUse[i] {
			ix.inUse[i] = true
			return model.RecordId(i), nil
		}
	}
	return 0, model.New("indexer.next", model.KindCapacityExhausted, "no free record ids")
}

// release frees id for reuse. Releasing an id that is not in use, or that
// is out of range, is a silent no-op.
func (ix *indexer) release(id model.RecordId) {
	if id < 0 || int(id) >= model.RecordCap {
		return
	}
	ix.inUse[id] = false
}
