package tickets

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// SecretBytes is the number of random bytes in a ticket secret.
const SecretBytes = 32

// Ticket is a single-use credential binding a client to a matchmaking or session slot.
type Ticket struct {
	ID     int    `json:"id"`
	Secret string `json:"secret"`
	Path   string `json:"path"`

	Taken    bool      `json:"-"`
	IssuedAt time.Time `json:"-"`
}

// ErrInvalidTicket is returned when a claimed ticket is unknown, has the wrong
// secret, or was already used.
type ErrInvalidTicket struct {
	ID int
}

func (e *ErrInvalidTicket) Error() string {
	return fmt.Sprintf("invalid ticket %d", e.ID)
}

func IsInvalidTicket(err error) bool {
	_, ok := err.(*ErrInvalidTicket)
	return ok
}

// Registry issues and validates tickets. It never removes tickets on its own;
// callers decide when a ticket is revoked, handed off or expired.
type Registry struct {
	lock    sync.RWMutex
	tickets map[int]*Ticket
	nextID  int
	path    string
	now     func() time.Time
}

type NewRegistryOptions struct {
	// Path is returned to clients as the channel to confirm the ticket on
	Path string
	// Now defaults to time.Now
	Now func() time.Time
}

func NewRegistry(opts NewRegistryOptions) *Registry {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Registry{
		tickets: make(map[int]*Ticket),
		path:    opts.Path,
		now:     now,
	}
}

// Issue allocates the next ticket id with a fresh secret and stores it.
func (r *Registry) Issue() (Ticket, error) {
	secret, err := newSecret()
	if err != nil {
		return Ticket{}, fmt.Errorf("failed to generate ticket secret: %v", err)
	}

	r.lock.Lock()
	defer r.lock.Unlock()
	r.nextID++
	t := &Ticket{
		ID:       r.nextID,
		Secret:   secret,
		Path:     r.path,
		IssuedAt: r.now(),
	}
	r.tickets[t.ID] = t
	return *t, nil
}

// Validate returns the stored ticket iff id exists and secret matches.
// It does not mark the ticket as consumed.
func (r *Registry) Validate(id int, secret string) (Ticket, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	t, ok := r.tickets[id]
	if !ok {
		return Ticket{}, false
	}
	if !SecretsMatch(t.Secret, secret) {
		return Ticket{}, false
	}
	return *t, true
}

// Revoke removes a ticket and reports whether it existed.
func (r *Registry) Revoke(id int) bool {
	r.lock.Lock()
	defer r.lock.Unlock()
	_, ok := r.tickets[id]
	delete(r.tickets, id)
	return ok
}

// Remove drops tickets whose ownership moved elsewhere.
func (r *Registry) Remove(ids ...int) {
	r.lock.Lock()
	defer r.lock.Unlock()
	for _, id := range ids {
		delete(r.tickets, id)
	}
}

// Expire removes tickets issued before cutoff unless keep returns true for
// their id. It returns the number of removed tickets.
func (r *Registry) Expire(cutoff time.Time, keep func(id int) bool) int {
	r.lock.Lock()
	defer r.lock.Unlock()
	removed := 0
	for id, t := range r.tickets {
		if !t.IssuedAt.Before(cutoff) {
			continue
		}
		if keep != nil && keep(id) {
			continue
		}
		delete(r.tickets, id)
		removed++
	}
	return removed
}

// Len returns the number of live tickets.
func (r *Registry) Len() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.tickets)
}

// SecretsMatch compares two secrets in constant time.
func SecretsMatch(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func newSecret() (string, error) {
	b := make([]byte, SecretBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
