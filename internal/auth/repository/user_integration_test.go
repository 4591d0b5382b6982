//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	autherrors "airseat/internal/auth/errors"
	migrations "airseat/internal/migrations/mongo"
	"airseat/internal/testutil"
	"airseat/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateAndFind(t *testing.T) {
	cfg := testutil.MongoConfig(t)
	ctx := context.Background()
	require.NoError(t, migrations.RunMigration(ctx, cfg.Client.Mongo, cfg.MongoDatabaseName, cfg.Log))
	repo := NewMongoUserRepository(cfg)

	user := &model.User{
		Name:         "Ada Lovelace",
		Email:        "ada@example.com",
		PasswordHash: "$2a$04$placeholder",
		Role:         model.RoleUser,
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}
	require.NoError(t, repo.Create(ctx, user))
	assert.Len(t, user.ID, 24)

	found, err := repo.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
	assert.Equal(t, user.PasswordHash, found.PasswordHash)

	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, autherrors.ErrNotFound)

	dup := *user
	dup.Name = "Someone Else"
	err = repo.Create(ctx, &dup)
	assert.ErrorIs(t, err, autherrors.ErrDuplicateEmail)
}

func TestUserRepository_SchemaRejectsUnknownRole(t *testing.T) {
	cfg := testutil.MongoConfig(t)
	ctx := context.Background()
	require.NoError(t, migrations.RunMigration(ctx, cfg.Client.Mongo, cfg.MongoDatabaseName, cfg.Log))
	repo := NewMongoUserRepository(cfg)

	err := repo.Create(ctx, &model.User{
		Name:         "Mallory",
		Email:        "mallory@example.com",
		PasswordHash: "x",
		Role:         "pilot",
		CreatedAt:    time.Now().UTC(),
	})
	assert.Error(t, err)
}
