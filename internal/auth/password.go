package auth

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the work factor used when none is configured.
const DefaultBcryptCost = 12

// Hasher hashes and verifies passwords with bcrypt.
type Hasher struct {
	cost int

	dummyOnce sync.Once
	dummy     []byte
}

// NewHasher creates a bcrypt-based hasher; out-of-range costs fall back to
// DefaultBcryptCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &Hasher{cost: cost}
}

func (h *Hasher) Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify compares in constant time. A mismatch or a malformed hash is
// simply false.
func (h *Hasher) Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// Burn spends one comparison at the configured cost against a throwaway
// hash, so that unknown accounts take as long to reject as known ones.
func (h *Hasher) Burn(plain string) {
	h.dummyOnce.Do(func() {
		h.dummy, _ = bcrypt.GenerateFromPassword([]byte("timing-equalizer"), h.cost)
	})
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(plain))
}
