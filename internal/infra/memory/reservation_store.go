package memory

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"roomchat/internal/domain/reservation"
	"roomchat/internal/pkg/clock"
	"roomchat/internal/pkg/errs"
	"roomchat/internal/usecase/shared"

	"github.com/google/uuid"
)

// roomShard serializes commits for a single room.
type roomShard struct {
	mu    sync.Mutex
	items []*reservation.Reservation
}

// ReservationStore keeps reservations in process memory. Commits for different rooms
// proceed in parallel; commits for the same room are serialized by the room's shard.
type ReservationStore struct {
	policy *reservation.Policy
	clock  clock.Clock
	logger *slog.Logger

	// fixed at construction; the room catalog is read-only at runtime
	shards map[int]*roomShard

	indexMu sync.RWMutex
	byID    map[uuid.UUID]int
}

var _ shared.ReservationStore = (*ReservationStore)(nil)

func NewReservationStore(policy *reservation.Policy, clock clock.Clock, logger *slog.Logger) *ReservationStore {
	shards := make(map[int]*roomShard)
	for _, id := range policy.Rooms().IDs() {
		shards[id] = &roomShard{}
	}
	return &ReservationStore{
		policy: policy,
		clock:  clock,
		logger: logger,
		shards: shards,
		byID:   make(map[uuid.UUID]int),
	}
}

func (s *ReservationStore) TryCommit(ctx context.Context, c reservation.Candidate) (*reservation.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := reservation.NewReservation(s.policy, c, s.clock.Now())
	if err != nil {
		return nil, err
	}
	shard := s.shards[c.RoomID]

	shard.mu.Lock()
	defer shard.mu.Unlock()

	for _, existing := range shard.items {
		if existing.ConflictsWith(c.RoomID, c.Slot) {
			s.logger.Info("reservation conflict",
				"room_id", c.RoomID,
				"slot", c.Slot.String(),
				"existing_id", existing.ID().String())
			return nil, errs.Mark(
				errs.Newf("room %d is already booked for %s", c.RoomID, existing.TimeSlot()),
				errs.ErrConflict,
			)
		}
	}
	shard.items = append(shard.items, res)

	s.indexMu.Lock()
	s.byID[res.ID()] = c.RoomID
	s.indexMu.Unlock()

	return res.Clone(), nil
}

func (s *ReservationStore) Cancel(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	shard, err := s.shardOf(id)
	if err != nil {
		return nil, err
	}

	shard.mu.Lock()
	defer shard.mu.Unlock()

	for _, r := range shard.items {
		if r.ID() != id {
			continue
		}
		if err := r.Cancel(s.clock.Now()); err != nil {
			return nil, errs.Mark(errs.Wrapf(err, "cancel %s", id), errs.ErrAlreadyCancelled)
		}
		return r.Clone(), nil
	}
	return nil, errs.Mark(errs.Newf("reservation %s", id), errs.ErrReservationNotFound)
}

func (s *ReservationStore) FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	shard, err := s.shardOf(id)
	if err != nil {
		return nil, err
	}

	shard.mu.Lock()
	defer shard.mu.Unlock()

	for _, r := range shard.items {
		if r.ID() == id {
			return r.Clone(), nil
		}
	}
	return nil, errs.Mark(errs.Newf("reservation %s", id), errs.ErrReservationNotFound)
}

func (s *ReservationStore) ListActive(ctx context.Context, f reservation.Filter) ([]*reservation.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []*reservation.Reservation
	for roomID, shard := range s.shards {
		if f.RoomID != nil && *f.RoomID != roomID {
			continue
		}
		shard.mu.Lock()
		for _, r := range shard.items {
			if r.IsActive() && f.Matches(r) {
				out = append(out, r.Clone())
			}
		}
		shard.mu.Unlock()
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Start().Equal(out[j].Start()) {
			return out[i].Start().Before(out[j].Start())
		}
		return out[i].RoomID() < out[j].RoomID()
	})
	return out, nil
}

func (s *ReservationStore) shardOf(id uuid.UUID) (*roomShard, error) {
	s.indexMu.RLock()
	roomID, ok := s.byID[id]
	s.indexMu.RUnlock()
	if !ok {
		return nil, errs.Mark(errs.Newf("reservation %s", id), errs.ErrReservationNotFound)
	}
	return s.shards[roomID], nil
}
