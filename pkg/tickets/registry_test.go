package tickets

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Issue(t *testing.T) {
	r := NewRegistry(NewRegistryOptions{Path: "/skwarz"})

	first, err := r.Issue()
	require.NoError(t, err)
	second, err := r.Issue()
	require.NoError(t, err)

	assert.Equal(t, 1, first.ID)
	assert.Equal(t, 2, second.ID)
	assert.Equal(t, "/skwarz", first.Path)
	assert.Len(t, first.Secret, SecretBytes*2)
	assert.NotEqual(t, first.Secret, second.Secret)
	assert.False(t, first.Taken)
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_Validate(t *testing.T) {
	r := NewRegistry(NewRegistryOptions{Path: "/skwarz"})
	ticket, err := r.Issue()
	require.NoError(t, err)

	tests := []struct {
		name   string
		id     int
		secret string
		want   bool
	}{
		{name: "match", id: ticket.ID, secret: ticket.Secret, want: true},
		{name: "wrong secret", id: ticket.ID, secret: "secret#1", want: false},
		{name: "empty secret", id: ticket.ID, secret: "", want: false},
		{name: "unknown id", id: ticket.ID + 1, secret: ticket.Secret, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Validate(tt.id, tt.secret)
			assert.Equal(t, tt.want, ok)
			if tt.want {
				assert.Equal(t, ticket, got)
			}
		})
	}

	// validation never consumes
	_, ok := r.Validate(ticket.ID, ticket.Secret)
	assert.True(t, ok)
}

func TestRegistry_RevokeAndRemove(t *testing.T) {
	r := NewRegistry(NewRegistryOptions{})
	a, _ := r.Issue()
	b, _ := r.Issue()
	c, _ := r.Issue()

	assert.True(t, r.Revoke(a.ID))
	assert.False(t, r.Revoke(a.ID))
	_, ok := r.Validate(a.ID, a.Secret)
	assert.False(t, ok)

	r.Remove(b.ID, c.ID)
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_Expire(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewRegistry(NewRegistryOptions{Now: func() time.Time { return now }})
	old, _ := r.Issue()
	kept, _ := r.Issue()
	now = now.Add(10 * time.Minute)
	fresh, _ := r.Issue()

	removed := r.Expire(now.Add(-5*time.Minute), func(id int) bool { return id == kept.ID })

	assert.Equal(t, 1, removed)
	_, ok := r.Validate(old.ID, old.Secret)
	assert.False(t, ok)
	_, ok = r.Validate(kept.ID, kept.Secret)
	assert.True(t, ok)
	_, ok = r.Validate(fresh.ID, fresh.Secret)
	assert.True(t, ok)
}

func TestIsInvalidTicket(t *testing.T) {
	assert.True(t, IsInvalidTicket(&ErrInvalidTicket{ID: 1}))
	assert.False(t, IsInvalidTicket(fmt.Errorf("other")))
	assert.EqualError(t, &ErrInvalidTicket{ID: 4}, "invalid ticket 4")
}
