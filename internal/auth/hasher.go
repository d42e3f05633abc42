package auth

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher hides the hash algorithm from the service.
type PasswordHasher interface {
	Hash(pw string) (string, error)
	Verify(hash, pw string) bool
}

// BcryptHasher hashes with bcrypt at Cost (bcrypt.DefaultCost when zero).
type BcryptHasher struct {
	Cost int

	once  sync.Once
	dummy []byte
}

func (b *BcryptHasher) cost() int {
	if b.Cost == 0 {
		return bcrypt.DefaultCost
	}
	return b.Cost
}

func (b *BcryptHasher) Hash(pw string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(pw), b.cost())
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (b *BcryptHasher) Verify(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// Burn runs a comparison against a throwaway hash of the same cost, so a
// login for an unknown email costs as much as one with a wrong password.
func (b *BcryptHasher) Burn(pw string) {
	b.once.Do(func() {
		b.dummy, _ = bcrypt.GenerateFromPassword([]byte("taskflow-dummy-password"), b.cost())
	})
	_ = bcrypt.CompareHashAndPassword(b.dummy, []byte(pw))
}
