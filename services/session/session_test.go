package sessionsvc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	nowFunc = func() time.Time { return now }
	defer func() { nowFunc = time.Now }()

	s := NewMemoryStore()

	require.NoError(t, s.Revoke(ctx, "a", now.Add(time.Hour)))
	require.NoError(t, s.Revoke(ctx, "expired", now.Add(-time.Hour)))

	tests := []struct {
		jti  string
		want bool
	}{
		{jti: "a", want: true},
		{jti: "expired", want: false},
		{jti: "unknown", want: false},
	}
	for _, tt := range tests {
		got, err := s.IsRevoked(ctx, tt.jti)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.jti)
	}

	now = now.Add(2 * time.Hour)
	got, err := s.IsRevoked(ctx, "a")
	require.NoError(t, err)
	assert.False(t, got, "revocations lapse with the token")
}

func TestRevokedKey(t *testing.T) {
	assert.Equal(t, "crm:revoked:abc", revokedKey("abc"))
}
