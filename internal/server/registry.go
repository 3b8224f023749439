package server

import (
	"errors"

	"github.com/lox/parlour/internal/protocol"
)

// ErrNameTaken is returned when a connecting user claims a display name
// already present in the registry.
var ErrNameTaken = errors.New("Name already taken.")

// Sender delivers one message to a client. Connections implement it;
// tests substitute fakes.
type Sender interface {
	Send(msg *protocol.Message)
}

// User is one registered connection.
type User struct {
	ID       string
	Name     string
	Status   string
	GameType string
	RoomCode string
	Sender   Sender
}

// Info projects the user onto the wire.
func (u *User) Info() protocol.UserInfo {
	return protocol.UserInfo{ID: u.ID, Name: u.Name, Status: u.Status, GameType: u.GameType}
}

// Registry is the unique-name directory of connected users. It is not
// goroutine-safe; the hub serializes access.
type Registry struct {
	byID   map[string]*User
	byName map[string]*User
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:   make(map[string]*User),
		byName: make(map[string]*User),
	}
}

// Add registers a user. Names are unique with case-sensitive equality.
func (r *Registry) Add(user *User) error {
	if _, taken := r.byName[user.Name]; taken {
		return ErrNameTaken
	}
	user.Status = protocol.StatusAvailable
	r.byID[user.ID] = user
	r.byName[user.Name] = user
	return nil
}

// Remove drops a user. Unknown ids are a no-op.
func (r *Registry) Remove(id string) *User {
	user, ok := r.byID[id]
	if !ok {
		return nil
	}
	delete(r.byID, id)
	delete(r.byName, user.Name)
	return user
}

// Get returns the user for an id.
func (r *Registry) Get(id string) (*User, bool) {
	user, ok := r.byID[id]
	return user, ok
}

// SetStatus updates a user's presence. The game type tags what they are
// playing and is cleared when they become available.
func (r *Registry) SetStatus(id, status, gameType string) (*User, bool) {
	user, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	user.Status = status
	user.GameType = gameType
	if status != protocol.StatusInGame {
		user.GameType = ""
		user.RoomCode = ""
	}
	return user, true
}

// Snapshot lists every user except the excluded id, for the user-list
// sent on registration.
func (r *Registry) Snapshot(excludeID string) []protocol.UserInfo {
	out := make([]protocol.UserInfo, 0, len(r.byID))
	for _, user := range r.byID {
		if user.ID == excludeID {
			continue
		}
		out = append(out, user.Info())
	}
	return out
}

// Each visits every registered user.
func (r *Registry) Each(fn func(*User)) {
	for _, user := range r.byID {
		fn(user)
	}
}

// Len returns the number of registered users.
func (r *Registry) Len() int {
	return len(r.byID)
}
