// Package fanout holds the process-local registry of live connections and the
// relay that feeds them from the inter-process broadcast channel. The registry
// itself never crosses processes; only broker events do.
package fanout

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// sendBuffer is the per-subscriber queue depth. A subscriber that falls this
// far behind has its frames dropped; the paired refetch signal covers recovery.
const sendBuffer = 32

// Subscriber is one live connection's handle in the registry. The websocket
// handler drains Send and writes frames to its own connection.
type Subscriber struct {
	ID       uuid.UUID
	GameID   uuid.UUID
	UserID   uuid.UUID
	JoinedAt time.Time

	send chan []byte
}

// Send returns the subscriber's outbound frame channel. It is closed on
// unsubscribe.
func (s *Subscriber) Send() <-chan []byte { return s.send }

// Registry maps game ids to the subscribers this process personally holds.
type Registry struct {
	mu    sync.RWMutex
	games map[uuid.UUID]map[*Subscriber]struct{}
	log   *logrus.Logger
}

func NewRegistry(log *logrus.Logger) *Registry {
	return &Registry{
		games: make(map[uuid.UUID]map[*Subscriber]struct{}),
		log:   log,
	}
}

// Subscribe registers a live connection for a game.
func (r *Registry) Subscribe(gameID, userID uuid.UUID) *Subscriber {
	sub := &Subscriber{
		ID:       uuid.New(),
		GameID:   gameID,
		UserID:   userID,
		JoinedAt: time.Now(),
		send:     make(chan []byte, sendBuffer),
	}
	r.mu.Lock()
	set, ok := r.games[gameID]
	if !ok {
		set = make(map[*Subscriber]struct{})
		r.games[gameID] = set
	}
	set[sub] = struct{}{}
	r.mu.Unlock()
	r.log.WithFields(logrus.Fields{
		"game_id": gameID, "user_id": userID, "sub_id": sub.ID,
	}).Debug("fanout subscriber added")
	return sub
}

// Unsubscribe removes a connection and closes its send channel. Safe to call
// more than once for the same subscriber.
func (r *Registry) Unsubscribe(sub *Subscriber) {
	r.mu.Lock()
	set, ok := r.games[sub.GameID]
	removed := false
	if ok {
		if _, present := set[sub]; present {
			delete(set, sub)
			removed = true
		}
		if len(set) == 0 {
			delete(r.games, sub.GameID)
		}
	}
	r.mu.Unlock()
	if removed {
		close(sub.send)
		r.log.WithFields(logrus.Fields{
			"game_id": sub.GameID, "sub_id": sub.ID,
		}).Debug("fanout subscriber removed")
	}
}

// Dispatch delivers a frame to every local subscriber of the game without
// blocking: a full buffer drops the frame for that subscriber. Returns the
// number of subscribers the frame was queued for.
func (r *Registry) Dispatch(gameID uuid.UUID, frame []byte) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for sub := range r.games[gameID] {
		select {
		case sub.send <- frame:
			n++
		default:
			r.log.WithFields(logrus.Fields{
				"game_id": gameID, "sub_id": sub.ID,
			}).Warn("slow fanout subscriber, frame dropped")
		}
	}
	return n
}

// Count returns how many live subscribers this process holds for a game.
func (r *Registry) Count(gameID uuid.UUID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games[gameID])
}
