package room

import (
	"errors"
	"strings"
)

var (
	ErrInvalidRoomID    = errors.New("room id must be positive")
	ErrEmptyRoomName    = errors.New("room name cannot be empty")
	ErrRoomNameTooLong  = errors.New("room name is too long (max 100 characters)")
	ErrInvalidCapacity  = errors.New("room capacity must be positive")
	ErrDuplicateRoomID  = errors.New("duplicate room id")
	ErrMalformedRoom    = errors.New("room entry must look like id:name:capacity")
	ErrEmptyRoomCatalog = errors.New("at least one room must be configured")
)

const (
	MaxRoomNameLength = 100
)

// Room is immutable reference data.
type Room struct {
	id       int
	name     string
	capacity int
}

func NewRoom(id int, name string, capacity int) (Room, error) {
	if id <= 0 {
		return Room{}, ErrInvalidRoomID
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Room{}, ErrEmptyRoomName
	}
	if len(name) > MaxRoomNameLength {
		return Room{}, ErrRoomNameTooLong
	}
	if capacity <= 0 {
		return Room{}, ErrInvalidCapacity
	}
	return Room{id: id, name: name, capacity: capacity}, nil
}

func (r Room) ID() int       { return r.id }
func (r Room) Name() string  { return r.name }
func (r Room) Capacity() int { return r.capacity }
