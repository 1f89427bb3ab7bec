// Package tag implements the typed key/value store attached to entities, items and the world. Entity and
// world tags are transient and live in the store; item tags live on the item.Stack value itself and are
// copied on mutation.
package tag

import (
	"github.com/google/uuid"
	"github.com/legacymc/combat/item"
	"github.com/segmentio/fasthash/fnv1a"
)

// Key is a typed tag key. The name is hashed once at construction so that hot lookups compare a single
// integer instead of a string.
type Key[T any] struct {
	name string
	hash uint64
}

// NewKey returns a typed key with the name passed.
func NewKey[T any](name string) Key[T] {
	return Key[T]{name: name, hash: fnv1a.HashString64(name)}
}

// Name returns the name of the key, used when tags are persisted on items.
func (k Key[T]) Name() string {
	return k.name
}

// Store holds the transient tag bags of entities and the world. It is owned by the tick goroutine and not
// safe for concurrent use.
type Store struct {
	entities map[uuid.UUID]map[uint64]any
	world    map[uint64]any
}

// NewStore returns an empty tag store.
func NewStore() *Store {
	return &Store{
		entities: make(map[uuid.UUID]map[uint64]any),
		world:    make(map[uint64]any),
	}
}

// ClearEntity removes every tag attached to the entity passed. Called on entity removal.
func (s *Store) ClearEntity(id uuid.UUID) {
	delete(s.entities, id)
}

// EntityValue returns the value stored for the entity under the key passed.
func EntityValue[T any](s *Store, id uuid.UUID, k Key[T]) (T, bool) {
	var zero T
	bag, ok := s.entities[id]
	if !ok {
		return zero, false
	}
	val, ok := bag[k.hash]
	if !ok {
		return zero, false
	}
	typed, ok := val.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// SetEntityValue stores a value for the entity under the key passed.
func SetEntityValue[T any](s *Store, id uuid.UUID, k Key[T], val T) {
	bag, ok := s.entities[id]
	if !ok {
		bag = make(map[uint64]any, 4)
		s.entities[id] = bag
	}
	bag[k.hash] = val
}

// RemoveEntityValue removes the value stored for the entity under the key passed.
func RemoveEntityValue[T any](s *Store, id uuid.UUID, k Key[T]) {
	if bag, ok := s.entities[id]; ok {
		delete(bag, k.hash)
		if len(bag) == 0 {
			delete(s.entities, id)
		}
	}
}

// WorldValue returns the instance-wide value stored under the key passed.
func WorldValue[T any](s *Store, k Key[T]) (T, bool) {
	var zero T
	val, ok := s.world[k.hash]
	if !ok {
		return zero, false
	}
	typed, ok := val.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// SetWorldValue stores an instance-wide value under the key passed.
func SetWorldValue[T any](s *Store, k Key[T], val T) {
	s.world[k.hash] = val
}

// RemoveWorldValue removes the instance-wide value stored under the key passed.
func RemoveWorldValue[T any](s *Store, k Key[T]) {
	delete(s.world, k.hash)
}

// ItemValue returns the value stored on the item stack under the key passed. Values on items must be
// stored in a form that survives NBT persistence, so serializable tag types implement their own
// conversion to and from plain maps.
func ItemValue[T any](stack item.Stack, k Key[T]) (T, bool) {
	var zero T
	val, ok := stack.Value(k.name)
	if !ok {
		return zero, false
	}
	typed, ok := val.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// SetItemValue returns a copy of the stack with the value stored under the key passed.
func SetItemValue[T any](stack item.Stack, k Key[T], val T) item.Stack {
	return stack.WithValue(k.name, val)
}
