// Package objstore maps protocol object IDs to objects.
package objstore

import "deedles.dev/dwr/wire"

type Store struct {
	objects map[uint32]wire.Object
	nextID  uint32
}

// New returns a store that allocates IDs starting at start. Clients
// allocate from 1 and servers from 0xFF000000.
func New(start uint32) *Store {
	return &Store{
		objects: make(map[uint32]wire.Object),
		nextID:  start,
	}
}

// Add adds obj to the store, assigning it the next free ID if it does
// not have one yet.
func (s *Store) Add(obj wire.Object) {
	id := obj.ID()
	if id == 0 {
		id = s.nextID
		obj.SetID(id)
		s.nextID++
	}

	s.objects[id] = obj
}

func (s *Store) Get(id uint32) wire.Object {
	return s.objects[id]
}

func (s *Store) Len() int {
	return len(s.objects)
}

func (s *Store) Delete(id uint32) {
	obj := s.objects[id]
	delete(s.objects, id)
	if obj != nil {
		obj.Delete()
	}
}

// Dispatch passes msg to the object that sent it.
func (s *Store) Dispatch(msg *wire.MessageBuffer) error {
	obj := s.objects[msg.Sender()]
	if obj == nil {
		return wire.UnknownSenderIDError{Msg: msg}
	}

	return obj.Dispatch(msg)
}
