package assets

import (
	"sync"

	"github.com/spaghettifunk/mirage/engine/containers"
	"github.com/spaghettifunk/mirage/engine/core"
	"github.com/spaghettifunk/mirage/engine/renderer/metadata"
)

// EventType classifies an asset change.
type EventType int

const (
	EventAdded EventType = iota
	EventModified
	EventRemoved
)

// MeshEvent carries a mesh asset change. Data is nil for removals.
type MeshEvent struct {
	Type EventType
	Name string
	Data *metadata.MeshData
}

// ImageEvent carries an image asset change. Data is nil for removals.
type ImageEvent struct {
	Type    EventType
	Name    string
	Data    *metadata.ImageData
	Sampler metadata.SamplerDescriptor
}

const maxQueuedEvents = 4096

// EventQueue buffers asset change events posted by the host until the render
// execution context drains them once per frame. Posting is safe from any
// thread; draining must only happen on the execution context.
type EventQueue struct {
	mu     sync.Mutex
	meshes *containers.RingQueue[MeshEvent]
	images *containers.RingQueue[ImageEvent]
}

func NewEventQueue() *EventQueue {
	return &EventQueue{
		meshes: containers.NewRingQueue[MeshEvent](maxQueuedEvents),
		images: containers.NewRingQueue[ImageEvent](maxQueuedEvents),
	}
}

func (q *EventQueue) PostMesh(event MeshEvent) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if err := q.meshes.Enqueue(event); err != nil {
		core.LogWarn("mesh event queue full, dropping event for '%s'", event.Name)
	}
}

func (q *EventQueue) PostImage(event ImageEvent) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if err := q.images.Enqueue(event); err != nil {
		core.LogWarn("image event queue full, dropping event for '%s'", event.Name)
	}
}

// DrainMeshes removes and returns all queued mesh events in post order.
func (q *EventQueue) DrainMeshes() []MeshEvent {
	q.mu.Lock()
	defer q.mu.Unlock()
	events := make([]MeshEvent, 0, q.meshes.Len())
	for !q.meshes.IsEmpty() {
		e, err := q.meshes.Dequeue()
		if err != nil {
			break
		}
		events = append(events, e)
	}
	return events
}

// DrainImages removes and returns all queued image events in post order.
func (q *EventQueue) DrainImages() []ImageEvent {
	q.mu.Lock()
	defer q.mu.Unlock()
	events := make([]ImageEvent, 0, q.images.Len())
	for !q.images.IsEmpty() {
		e, err := q.images.Dequeue()
		if err != nil {
			break
		}
		events = append(events, e)
	}
	return events
}
