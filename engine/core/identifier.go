package core

import "fmt"

var owners []interface{}

// IdentifierAquireNewID hands out the lowest free slot id, registering the
// owner so the slot is not reused until released.
func IdentifierAquireNewID(owner interface{}) uint32 {
	if len(owners) == 0 {
		owners = make([]interface{}, 100)
	}
	length := uint32(len(owners))
	for i := uint32(0); i < length; i++ {
		// Existing free spot. Take it.
		if owners[i] == nil {
			owners[i] = owner
			return i
		}
	}

	// If here, no existing free slots. Need a new id, so push one.
	owners = append(owners, owner)
	return uint32(len(owners)) - 1
}

func IdentifierReleaseID(id uint32) error {
	if len(owners) == 0 {
		return fmt.Errorf("identifier_release_id called before initialization. identifier_aquire_new_id should have been called first. Nothing was done")
	}

	length := uint32(len(owners))
	if id >= length {
		return fmt.Errorf("identifier_release_id: id '%d' out of range (max=%d). Nothing was done", id, length)
	}

	// Just zero out the entry, making it available for use.
	owners[id] = nil
	return nil
}
