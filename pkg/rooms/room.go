// Package rooms holds the bounded membership container shared by matchmaking
// waiting rooms and in-game rosters. Rooms are not safe for concurrent use;
// their owner serializes access.
package rooms

import "errors"

// ErrRoomFull is returned by Join when the room is at capacity.
var ErrRoomFull = errors.New("room is full")

// Room is an ordered set of members bounded by Max.
type Room[T comparable] struct {
	ID  int
	Min int
	Max int

	members []T
}

func New[T comparable](id, min, max int) *Room[T] {
	return &Room[T]{
		ID:      id,
		Min:     min,
		Max:     max,
		members: make([]T, 0, max),
	}
}

// Join appends m. The room never grows past Max: a full room returns
// ErrRoomFull and is left unchanged.
func (r *Room[T]) Join(m T) error {
	if r.IsFull() {
		return ErrRoomFull
	}
	r.members = append(r.members, m)
	return nil
}

// Leave removes m and reports whether it was a member.
func (r *Room[T]) Leave(m T) bool {
	for i, member := range r.members {
		if member == m {
			r.members = append(r.members[:i], r.members[i+1:]...)
			return true
		}
	}
	return false
}

func (r *Room[T]) Contains(m T) bool {
	for _, member := range r.members {
		if member == m {
			return true
		}
	}
	return false
}

func (r *Room[T]) Size() int {
	return len(r.members)
}

func (r *Room[T]) PlayersEnough() bool {
	return r.Size() >= r.Min
}

func (r *Room[T]) IsFull() bool {
	return r.Size() >= r.Max
}

// Members returns a copy of the members in insertion order.
func (r *Room[T]) Members() []T {
	members := make([]T, len(r.members))
	copy(members, r.members)
	return members
}

// Available returns the first room with a free slot, or nil.
func Available[T comparable](rooms []*Room[T]) *Room[T] {
	for _, r := range rooms {
		if r.Size() < r.Max {
			return r
		}
	}
	return nil
}
