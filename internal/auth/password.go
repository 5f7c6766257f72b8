package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"
)

const (
	HashArgon2id = "argon2id"
	HashBcrypt   = "bcrypt"
)

// Hasher hashes new passwords with one configured algorithm and verifies
// hashes of either kind, so bcrypt hashes carried over from older
// deployments keep working.
type Hasher struct {
	algorithm  string
	argon      *argon2id.Params
	bcryptCost int
}

type HasherConfig struct {
	Algorithm       string
	BcryptCost      int
	Argon2MemoryKiB uint32
	Argon2Iter      uint32
}

func NewHasher(cfg HasherConfig) (*Hasher, error) {
	h := &Hasher{
		algorithm: cfg.Algorithm,
		argon: &argon2id.Params{
			Memory:      64 * 1024,
			Iterations:  3,
			Parallelism: 1,
			SaltLength:  16,
			KeyLength:   32,
		},
		bcryptCost: bcrypt.DefaultCost,
	}
	if h.algorithm == "" {
		h.algorithm = HashArgon2id
	}
	if cfg.Argon2MemoryKiB > 0 {
		h.argon.Memory = cfg.Argon2MemoryKiB
	}
	if cfg.Argon2Iter > 0 {
		h.argon.Iterations = cfg.Argon2Iter
	}
	if cfg.BcryptCost != 0 {
		if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
			return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cfg.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
		}
		h.bcryptCost = cfg.BcryptCost
	}
	switch h.algorithm {
	case HashArgon2id, HashBcrypt:
	default:
		return nil, fmt.Errorf("unsupported password hash algorithm: %s", h.algorithm)
	}
	return h, nil
}

func (h *Hasher) Hash(password string) (string, error) {
	if h.algorithm == HashBcrypt {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), h.bcryptCost)
		if err != nil {
			return "", err
		}
		return string(hash), nil
	}
	return argon2id.CreateHash(password, h.argon)
}

// Verify reports whether password matches hash. Both libraries compare
// in constant time. An error means the hash itself is unusable.
func (h *Hasher) Verify(password, hash string) (bool, error) {
	switch {
	case strings.HasPrefix(hash, "$argon2id$"):
		return argon2id.ComparePasswordAndHash(password, hash)
	case strings.HasPrefix(hash, "$2a$"), strings.HasPrefix(hash, "$2b$"), strings.HasPrefix(hash, "$2y$"):
		err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return true, nil
	default:
		return false, errors.New("unrecognized password hash format")
	}
}
