// Package anonid issues and verifies the tracking credential of anonymous
// complaints: a public random identity (the access code shown to the
// submitter) paired with a one-way salted verifier derived from a
// user-chosen secret. The plaintext secret is never stored; it exists only
// in the submission response and in the submitter's own custody.
package anonid

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidSecret     = errors.New("secret must not be empty")
	ErrIdentityCollision = errors.New("anonymous identity already in use")
)

// Credential is the pair stored alongside an anonymous complaint. Identity
// is public once displayed; access control rests entirely on the verifier.
type Credential struct {
	Identity string
	Verifier string
}

// RandomIdentifierSource produces globally-unique identity tokens. Abstracted
// so tests can pin the randomness.
type RandomIdentifierSource interface {
	NewIdentifier() string
}

// SecretHasher derives and checks one-way verifiers. The derivation must
// salt per invocation; Compare must use the salt embedded in the verifier.
type SecretHasher interface {
	Hash(secret string) (string, error)
	Compare(verifier, secret string) bool
}

// UUIDSource generates UUIDv4 identities (128 bits of randomness).
type UUIDSource struct{}

func (UUIDSource) NewIdentifier() string {
	return uuid.NewString()
}

// BcryptHasher derives verifiers with bcrypt. Cost below bcrypt.DefaultCost
// is rejected at hash time by refusing to weaken the work factor.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(secret string) (string, error) {
	cost := h.Cost
	if cost < bcrypt.DefaultCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", fmt.Errorf("failed to derive verifier: %w", err)
	}
	return string(b), nil
}

func (h BcryptHasher) Compare(verifier, secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(verifier), []byte(secret)) == nil
}

// Issuer binds an identifier source and a hasher into the issuance and
// verification operations.
type Issuer struct {
	ids    RandomIdentifierSource
	hasher SecretHasher
}

func NewIssuer(ids RandomIdentifierSource, hasher SecretHasher) *Issuer {
	return &Issuer{ids: ids, hasher: hasher}
}

// DefaultIssuer uses UUIDv4 identities and bcrypt verifiers.
func DefaultIssuer() *Issuer {
	return NewIssuer(UUIDSource{}, BcryptHasher{Cost: bcrypt.DefaultCost})
}

// Issue derives a fresh credential from secret. The identity is generated
// independently of the secret. bcrypt is deliberately slow; callers run this
// on the request goroutine, never on a shared loop.
func (i *Issuer) Issue(secret string) (Credential, error) {
	if secret == "" {
		return Credential{}, ErrInvalidSecret
	}

	verifier, err := i.hasher.Hash(secret)
	if err != nil {
		return Credential{}, err
	}

	return Credential{
		Identity: i.ids.NewIdentifier(),
		Verifier: verifier,
	}, nil
}

// NewIdentity returns a fresh identity for collision retries without paying
// the hash cost again.
func (i *Issuer) NewIdentity() string {
	return i.ids.NewIdentifier()
}

// Verify checks secret against a stored verifier.
func (i *Issuer) Verify(verifier, secret string) bool {
	return i.hasher.Compare(verifier, secret)
}

const (
	// GeneratedSecretLength matches the helper offered to submitters with no
	// secret of their own. Eight alphanumeric characters deter casual
	// guessing only; no stronger guarantee is implied.
	GeneratedSecretLength = 8

	secretAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// GenerateSecret produces a random 8-character alphanumeric secret for
// submitters who have no preference.
func GenerateSecret() (string, error) {
	out := make([]byte, GeneratedSecretLength)
	max := big.NewInt(int64(len(secretAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate secret: %w", err)
		}
		out[i] = secretAlphabet[n.Int64()]
	}
	return string(out), nil
}
