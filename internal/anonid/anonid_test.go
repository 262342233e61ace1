package anonid_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/univertix/ouvidoria-backend/internal/anonid"
)

func TestIssue_EmptySecretRejected(t *testing.T) {
	issuer := anonid.DefaultIssuer()

	_, err := issuer.Issue("")

	assert.ErrorIs(t, err, anonid.ErrInvalidSecret)
}

func TestIssue_RoundTrip(t *testing.T) {
	issuer := anonid.DefaultIssuer()

	cred, err := issuer.Issue("Tr0ub4dor")
	require.NoError(t, err)

	// identity is a well-formed UUID, generated independently of the secret
	_, parseErr := uuid.Parse(cred.Identity)
	assert.NoError(t, parseErr, "identity must be a valid UUID string")
	assert.NotContains(t, cred.Verifier, "Tr0ub4dor", "verifier must not embed the plaintext secret")

	assert.True(t, issuer.Verify(cred.Verifier, "Tr0ub4dor"))
	assert.False(t, issuer.Verify(cred.Verifier, "wrongpass"))
	assert.False(t, issuer.Verify(cred.Verifier, "tr0ub4dor"), "comparison must be case-sensitive")
}

func TestIssue_IdentitiesDistinct(t *testing.T) {
	issuer := anonid.DefaultIssuer()

	seen := make(map[string]bool)
	for i := 0; i < 16; i++ {
		cred, err := issuer.Issue("same-secret")
		require.NoError(t, err)
		assert.False(t, seen[cred.Identity], "identity %q issued twice", cred.Identity)
		seen[cred.Identity] = true
	}
}

func TestIssue_SaltNotReused(t *testing.T) {
	issuer := anonid.DefaultIssuer()

	a, err := issuer.Issue("same-secret")
	require.NoError(t, err)
	b, err := issuer.Issue("same-secret")
	require.NoError(t, err)

	// equal secrets must not produce equal stored verifiers
	assert.NotEqual(t, a.Verifier, b.Verifier)
	assert.True(t, issuer.Verify(a.Verifier, "same-secret"))
	assert.True(t, issuer.Verify(b.Verifier, "same-secret"))
}

func TestNewIdentity_FreshPerCall(t *testing.T) {
	issuer := anonid.DefaultIssuer()

	assert.NotEqual(t, issuer.NewIdentity(), issuer.NewIdentity())
}

func TestGenerateSecret_LengthAndAlphabet(t *testing.T) {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	for i := 0; i < 32; i++ {
		secret, err := anonid.GenerateSecret()
		require.NoError(t, err)
		assert.Len(t, secret, anonid.GeneratedSecretLength)
		for _, r := range secret {
			assert.True(t, strings.ContainsRune(alphabet, r), "unexpected character %q", r)
		}
	}
}

func TestGenerateSecret_TracksAfterIssue(t *testing.T) {
	issuer := anonid.DefaultIssuer()

	secret, err := anonid.GenerateSecret()
	require.NoError(t, err)

	cred, err := issuer.Issue(secret)
	require.NoError(t, err)
	assert.True(t, issuer.Verify(cred.Verifier, secret))
}

// fixedSource pins identity generation for deterministic tests.
type fixedSource struct {
	ids  []string
	next int
}

func (f *fixedSource) NewIdentifier() string {
	id := f.ids[f.next%len(f.ids)]
	f.next++
	return id
}

func TestIssuer_CustomSource(t *testing.T) {
	src := &fixedSource{ids: []string{"id-1", "id-2"}}
	issuer := anonid.NewIssuer(src, anonid.BcryptHasher{})

	cred, err := issuer.Issue("s3cret")
	require.NoError(t, err)
	assert.Equal(t, "id-1", cred.Identity)
	assert.Equal(t, "id-2", issuer.NewIdentity())
}
