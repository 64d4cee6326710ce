package relay

import (
	"log/slog"
	"sync"
)

// room holds the active sessions for one room ID, keyed by user ID. The
// join order is kept so fan-out is stable, though nothing depends on it.
type room struct {
	sessions map[int64]*Session
	order    []int64
}

// Directory is the single source of truth for room membership. Rooms are
// created lazily on first join and deleted synchronously when their last
// session leaves. All mutation goes through Join and Leave; no other
// component touches the maps.
type Directory struct {
	mu    sync.RWMutex
	rooms map[int64]*room
}

// NewDirectory creates an empty room directory.
func NewDirectory() *Directory {
	return &Directory{
		rooms: make(map[int64]*room),
	}
}

// Join registers user in the given room, creating the room if it does not
// exist. Joining twice with the same user ID is a no-op that returns the
// existing session with its original transport: the second join is treated
// as a duplicate notification of an already-active session, not an error.
// The second return value reports whether a new session was created.
func (d *Directory) Join(roomID int64, user User, conn Conn) (*Session, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	r, ok := d.rooms[roomID]
	if !ok {
		r = &room{sessions: make(map[int64]*Session)}
		d.rooms[roomID] = r
	}

	if existing, ok := r.sessions[user.ID]; ok {
		slog.Info("Reusing existing session for user", "user", user.Name, "roomID", roomID)
		return existing, false
	}

	session := &Session{
		RoomID: roomID,
		User:   user,
		Conn:   conn,
	}
	r.sessions[user.ID] = session
	r.order = append(r.order, user.ID)

	slog.Info("Added user to room", "user", user.Name, "roomID", roomID, "occupancy", len(r.sessions))
	return session, true
}

// Lookup returns a snapshot of the sessions in a room, in join order. An
// absent room is not an error; callers handle it as a no-op.
func (d *Directory) Lookup(roomID int64) ([]*Session, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	r, ok := d.rooms[roomID]
	if !ok {
		return nil, false
	}
	return r.snapshot(0), true
}

// Session returns the session for a specific user in a room.
func (d *Directory) Session(roomID, userID int64) (*Session, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	r, ok := d.rooms[roomID]
	if !ok {
		return nil, false
	}
	s, ok := r.sessions[userID]
	return s, ok
}

// Others returns every session in the room except the given user's. These
// are the broadcast targets for that user's messages.
func (d *Directory) Others(roomID, excludingUserID int64) []*Session {
	d.mu.RLock()
	defer d.mu.RUnlock()

	r, ok := d.rooms[roomID]
	if !ok {
		return nil
	}
	return r.snapshot(excludingUserID)
}

// Leave removes every session bound to the given connection ID. The close
// notification carries no user or room identity, so this sweeps the whole
// directory for matching connections; a client may have joined more than
// one room over the same transport, and all of those sessions die with it.
// Rooms are small, so the scan is cheap. Removing a room's last session
// deletes the room. It returns the removed sessions, if any.
func (d *Directory) Leave(connID string) []*Session {
	d.mu.Lock()
	defer d.mu.Unlock()

	var removed []*Session
	for roomID, r := range d.rooms {
		for userID, s := range r.sessions {
			if s.Conn.ID() != connID {
				continue
			}

			slog.Info("Cleaning up user from room", "user", s.User.Name, "email", s.User.Email, "roomID", roomID)
			delete(r.sessions, userID)
			for i, id := range r.order {
				if id == userID {
					r.order = append(r.order[:i], r.order[i+1:]...)
					break
				}
			}
			if len(r.sessions) == 0 {
				delete(d.rooms, roomID)
			}
			removed = append(removed, s)
		}
	}
	return removed
}

// RoomCount returns the number of active rooms.
func (d *Directory) RoomCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.rooms)
}

// snapshot copies the room's sessions in join order, skipping the given
// user ID. Callers must hold at least a read lock.
func (r *room) snapshot(excludingUserID int64) []*Session {
	out := make([]*Session, 0, len(r.sessions))
	for _, userID := range r.order {
		if userID == excludingUserID {
			continue
		}
		if s, ok := r.sessions[userID]; ok {
			out = append(out, s)
		}
	}
	return out
}
