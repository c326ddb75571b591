package assets

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/mirage/engine/renderer/metadata"
)

func TestEventQueueDrainsInPostOrder(t *testing.T) {
	q := NewEventQueue()
	q.PostMesh(MeshEvent{Type: EventAdded, Name: "a"})
	q.PostMesh(MeshEvent{Type: EventModified, Name: "a"})
	q.PostMesh(MeshEvent{Type: EventRemoved, Name: "a"})

	events := q.DrainMeshes()
	assert.Len(t, events, 3)
	assert.Equal(t, EventAdded, events[0].Type)
	assert.Equal(t, EventModified, events[1].Type)
	assert.Equal(t, EventRemoved, events[2].Type)

	assert.Empty(t, q.DrainMeshes(), "drain consumes the queue")
}

func TestEventQueueSeparatesMeshAndImageStreams(t *testing.T) {
	q := NewEventQueue()
	q.PostMesh(MeshEvent{Type: EventAdded, Name: "mesh"})
	q.PostImage(ImageEvent{Type: EventAdded, Name: "image", Sampler: metadata.DefaultSampler()})

	assert.Len(t, q.DrainMeshes(), 1)
	assert.Len(t, q.DrainImages(), 1)
}

func TestEventQueueConcurrentPosting(t *testing.T) {
	q := NewEventQueue()
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				q.PostMesh(MeshEvent{Type: EventAdded, Name: "m"})
			}
		}()
	}
	wg.Wait()
	assert.Len(t, q.DrainMeshes(), 400)
}
