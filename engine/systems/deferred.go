package systems

import (
	"sort"

	"github.com/spaghettifunk/mirage/engine/core"
	"github.com/spaghettifunk/mirage/engine/renderer/metadata"
)

// DeferredDrawSystem collects order-dependent draws (alpha blended,
// reflection-reading) during opaque-class phases and resolves them
// back-to-front at the matching transparent-class phase.
type DeferredDrawSystem struct {
	queue []metadata.DeferredDraw
}

func NewDeferredDrawSystem() *DeferredDrawSystem {
	return &DeferredDrawSystem{
		queue: make([]metadata.DeferredDraw, 0, 64),
	}
}

// Defer enqueues a draw for resolution at the next transparent-class phase.
func (s *DeferredDrawSystem) Defer(distance float32, id metadata.DrawID, materialType metadata.MaterialType) {
	s.queue = append(s.queue, metadata.DeferredDraw{
		Distance: distance,
		ID:       id,
		Type:     materialType,
	})
}

// Len returns the number of pending deferred draws.
func (s *DeferredDrawSystem) Len() int {
	return len(s.queue)
}

// Resolve sorts the queue farthest-first and dispatches maximal contiguous
// same-type runs, one callback invocation per run. Runs are never merged across
// an interrupting type. Equal distances keep their insertion order; that falls
// out of the stable sort and is not a guarantee callers should lean on.
// The queue is empty when Resolve returns.
func (s *DeferredDrawSystem) Resolve(dispatch func(materialType metadata.MaterialType, run []metadata.DeferredDraw)) {
	if len(s.queue) == 0 {
		return
	}
	sort.SliceStable(s.queue, func(i, j int) bool {
		return s.queue[i].Distance > s.queue[j].Distance
	})

	start := 0
	for i := 1; i <= len(s.queue); i++ {
		if i == len(s.queue) || s.queue[i].Type != s.queue[start].Type {
			dispatch(s.queue[start].Type, s.queue[start:i])
			start = i
		}
	}

	core.Metrics().DeferredResolved += uint32(len(s.queue))
	s.queue = s.queue[:0]
}
