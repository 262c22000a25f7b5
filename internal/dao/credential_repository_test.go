package dao

import (
	"context"
	"testing"
	"time"

	"github.com/haierkeys/agent-scrum-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCredentialRepository_UpsertKeepsOnePerUser(t *testing.T) {
	repo := NewCredentialRepository(newTestDao(t))
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	first, err := repo.Upsert(ctx, &domain.Credential{UID: 7, CredentialsJSON: `{"a":1}`, IsValid: true, UploadedAt: now})
	require.NoError(t, err)

	second, err := repo.Upsert(ctx, &domain.Credential{UID: 7, CredentialsJSON: `{"a":2}`, IsValid: true, UploadedAt: now.Add(time.Minute)})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	got, err := repo.GetByUID(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, `{"a":2}`, got.CredentialsJSON)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCredentialRepository_UpdateValidation(t *testing.T) {
	repo := NewCredentialRepository(newTestDao(t))
	ctx := context.Background()

	c, err := repo.Upsert(ctx, &domain.Credential{UID: 1, CredentialsJSON: "{}", IsValid: true, UploadedAt: time.Now()})
	require.NoError(t, err)

	at := time.Now()
	require.NoError(t, repo.UpdateValidation(ctx, c.ID, false, at))

	got, err := repo.GetByUID(ctx, 1)
	require.NoError(t, err)
	assert.False(t, got.IsValid)
	require.NotNil(t, got.LastValidatedAt)
	assert.WithinDuration(t, at, *got.LastValidatedAt, time.Second)

	assert.ErrorIs(t, repo.UpdateValidation(ctx, 999, true, at), gorm.ErrRecordNotFound)

	_, err = repo.GetByUID(ctx, 2)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
