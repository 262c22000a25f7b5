package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
		err  bool
	}{
		{"7d", 7 * 24 * time.Hour, false},
		{"90", 90 * time.Second, false},
		{"1h30m", 90 * time.Minute, false},
		{" 2d ", 48 * time.Hour, false},
		{"xd", 0, true},
		{"soon", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseDuration(tt.in)
		if tt.err {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	assert.Equal(t, time.Minute, MustParseDuration("bad", time.Minute))
	assert.Equal(t, time.Minute, MustParseDuration("0", time.Minute))
}

func TestPasswordHash(t *testing.T) {
	hash, err := GeneratePasswordHash("Admin@123")
	require.NoError(t, err)

	assert.True(t, CheckPasswordHash(hash, "Admin@123"))
	assert.False(t, CheckPasswordHash(hash, "admin@123"))
	assert.False(t, CheckPasswordHash("", "Admin@123"))
}

func TestValidators(t *testing.T) {
	assert.True(t, IsValidEmail("admin@example.com"))
	assert.False(t, IsValidEmail("admin@example"))
	assert.True(t, IsValidUsername("scrum_master"))
	assert.False(t, IsValidUsername("ab"))
	assert.Equal(t, "admin@example.com", NormalizeEmail("  Admin@Example.COM\n"))
}

func TestGetRandomString(t *testing.T) {
	a := GetRandomString(32)
	b := GetRandomString(32)
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}
