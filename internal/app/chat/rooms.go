package chat

import (
	"sync"

	"github.com/mountain-chan/security-chat-backend/internal/pkg/errs"
)

// Rooms is the process-wide table of named broadcast groups. Rooms are created
// implicitly on first join and garbage-collected when the last member leaves;
// membership is by connection, independent of identity. Rooms has its own lock,
// separate from Presence, since the two tables never need a combined snapshot.
type Rooms struct {
	mu      sync.RWMutex
	members map[string]map[*Client]struct{}
}

// NewRooms returns an empty room membership table.
func NewRooms() *Rooms {
	return &Rooms{
		members: make(map[string]map[*Client]struct{}),
	}
}

// Join adds the connection to the room's member set. Idempotent.
func (r *Rooms) Join(room string, c *Client) *errs.CustomError {
	if room == "" {
		return errs.NewError(errs.ErrRoomNameInvalid)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.members[room] == nil {
		r.members[room] = make(map[*Client]struct{})
	}
	r.members[room][c] = struct{}{}
	return nil
}

// Leave removes the connection from the room. Idempotent; no error if absent.
func (r *Rooms) Leave(room string, c *Client) *errs.CustomError {
	if room == "" {
		return errs.NewError(errs.ErrRoomNameInvalid)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.leaveLocked(room, c)
	return nil
}

// MembersOf returns a snapshot of the room's member set, empty for unknown rooms.
func (r *Rooms) MembersOf(room string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.members[room]
	res := make([]*Client, 0, len(set))
	for c := range set {
		res = append(res, c)
	}
	return res
}

// Purge removes the connection from every room it belongs to.
// Invoked by disconnect handling.
func (r *Rooms) Purge(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for room := range r.members {
		r.leaveLocked(room, c)
	}
}

// leaveLocked removes one member, deleting the room when it empties. Callers hold r.mu.
func (r *Rooms) leaveLocked(room string, c *Client) {
	set, ok := r.members[room]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(r.members, room)
	}
}
