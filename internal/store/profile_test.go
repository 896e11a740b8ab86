package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrylevesque/navshell/internal/models"
)

func TestTokenFingerprint(t *testing.T) {
	a := TokenFingerprint("token-a")
	assert.Len(t, a, 64)
	assert.Equal(t, a, TokenFingerprint("token-a"))
	assert.NotEqual(t, a, TokenFingerprint("token-b"))
	assert.NotContains(t, a, "token-a")
}

func TestProfileStores(t *testing.T) {
	stores := map[string]ProfileStore{
		"memory": NewMemoryProfileStore(),
		"redis":  NewRedisProfileStore(newRedis(t), "navshell:profile:"),
	}
	for name, s := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := s.Lookup(ctx, "tok")
			assert.ErrorIs(t, err, ErrProfileNotFound)

			require.NoError(t, s.Put(ctx, "tok", models.Profile{UserID: "u1", Handle: "jdoe"}))
			p, err := s.Lookup(ctx, "tok")
			require.NoError(t, err)
			assert.Equal(t, "jdoe", p.Handle)
		})
	}
}
