package redis

import (
	"context"
	"sync"
	"time"

	"classroom-quiz/internal/app"
	"github.com/redis/go-redis/v9"
)

// RoomStore is a Redis-aware implementation of app.RoomRepository.
// Notes:
//   - Room state stays in process; rooms are not restored after a restart.
//   - Redis holds a liveness marker per PIN so other services (PIN allocation,
//     dashboards) can see which rooms are live on this instance.
type RoomStore struct {
	client *redis.Client
	ttl    time.Duration
	mu     sync.RWMutex
	rooms  map[string]*app.Room
}

func NewRoomStore(client *redis.Client, ttl time.Duration) *RoomStore {
	return &RoomStore{
		client: client,
		ttl:    ttl,
		rooms:  make(map[string]*app.Room),
	}
}

// Use runs fn on the room for pin, creating it on first reference. Eviction
// waits for fn to return.
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
		// best-effort liveness marker
		_ = s.client.Set(context.Background(), s.key(pin), "1", s.ttl).Err()
	}
	fn(room)
}

func (s *RoomStore) Get(pin string) (*app.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[pin]
	return room, ok
}

func (s *RoomStore) DeleteIfIdle(pin string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[pin]
	if !ok {
		return
	}
	if room.IsIdle() {
		delete(s.rooms, pin)
		_ = s.client.Del(context.Background(), s.key(pin)).Err()
	}
}

// Touch refreshes the liveness marker of every room held by this store.
func (s *RoomStore) Touch(ctx context.Context) error {
	s.mu.RLock()
	pins := make([]string, 0, len(s.rooms))
	for pin := range s.rooms {
		pins = append(pins, pin)
	}
	s.mu.RUnlock()

	if len(pins) == 0 {
		return nil
	}
	pipe := s.client.Pipeline()
	for _, pin := range pins {
		pipe.Set(ctx, s.key(pin), "1", s.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RoomStore) key(pin string) string {
	return "quiz:room:" + pin
}
