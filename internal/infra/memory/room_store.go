package memory

import (
	"sync"

	"classroom-quiz/internal/app"
)

// RoomStore holds live rooms in process memory, keyed by PIN.
//
// Room operations run under the read lock so different rooms proceed in
// parallel while eviction, which takes the write lock, waits for them. A room
// is only evicted once it is idle: nobody connected and no session state.
type RoomStore struct {
	mu    sync.RWMutex
	rooms map[string]*app.Room
}

func NewRoomStore() *RoomStore {
	return &RoomStore{
		rooms: make(map[string]*app.Room),
	}
}

// Use runs fn on the room for pin, creating the room on first reference.
func (s *RoomStore) Use(pin string, fn func(*app.Room)) {
	s.mu.RLock()
	if room, ok := s.rooms[pin]; ok {
		defer s.mu.RUnlock()
		fn(room)
		return
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[pin]
	if !ok {
		room = app.NewRoom(pin)
		s.rooms[pin] = room
	}
	fn(room)
}

// Get returns the room for pin without creating it.
func (s *RoomStore) Get(pin string) (*app.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[pin]
	return room, ok
}

// DeleteIfIdle evicts the room once it has neither connections nor state.
func (s *RoomStore) DeleteIfIdle(pin string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if room, ok := s.rooms[pin]; ok && room.IsIdle() {
		delete(s.rooms, pin)
	}
}

// Len reports how many rooms are live.
func (s *RoomStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}
