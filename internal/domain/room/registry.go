package room

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Registry is the static room catalog. It is read-only after construction.
type Registry struct {
	rooms []Room
	byID  map[int]Room
}

func NewRegistry(rooms ...Room) (*Registry, error) {
	if len(rooms) == 0 {
		return nil, ErrEmptyRoomCatalog
	}

	byID := make(map[int]Room, len(rooms))
	for _, r := range rooms {
		if _, dup := byID[r.ID()]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateRoomID, r.ID())
		}
		byID[r.ID()] = r
	}

	sorted := make([]Room, len(rooms))
	copy(sorted, rooms)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID() < sorted[j].ID() })

	return &Registry{rooms: sorted, byID: byID}, nil
}

// ParseRegistry builds a registry from "id:name:capacity" entries.
func ParseRegistry(entries []string) (*Registry, error) {
	rooms := make([]Room, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("%w: %q", ErrMalformedRoom, entry)
		}
		id, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrMalformedRoom, entry)
		}
		capacity, err := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrMalformedRoom, entry)
		}
		r, err := NewRoom(id, parts[1], capacity)
		if err != nil {
			return nil, fmt.Errorf("room %q: %w", entry, err)
		}
		rooms = append(rooms, r)
	}
	return NewRegistry(rooms...)
}

func (r *Registry) Get(id int) (Room, bool) {
	room, ok := r.byID[id]
	return room, ok
}

func (r *Registry) Contains(id int) bool {
	_, ok := r.byID[id]
	return ok
}

// All returns the rooms ordered by id ascending.
func (r *Registry) All() []Room {
	out := make([]Room, len(r.rooms))
	copy(out, r.rooms)
	return out
}

func (r *Registry) IDs() []int {
	ids := make([]int, len(r.rooms))
	for i, room := range r.rooms {
		ids[i] = room.ID()
	}
	return ids
}
