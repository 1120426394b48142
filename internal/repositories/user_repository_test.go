package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tanvir09/vidtube/backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupUserDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	return db
}

func TestUserRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgresUserRepository(setupUserDB(t))

	user := &models.User{DisplayName: "Alice", Email: "alice@example.com", FirebaseUID: "fb-123"}
	require.NoError(t, repo.CreateUser(ctx, user))
	require.NotZero(t, user.ID)

	byID, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", byID.DisplayName)

	byEmail, err := repo.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byUID, err := repo.GetUserByFirebaseUID(ctx, "fb-123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byUID.ID)

	name, err := repo.DisplayName(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", name)
}

func TestUserRepositoryMissingUser(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgresUserRepository(setupUserDB(t))

	_, err := repo.GetUserByID(ctx, 999)
	assert.Error(t, err)

	_, err = repo.GetUserByEmail(ctx, "nobody@example.com")
	assert.Error(t, err)

	_, err = repo.DisplayName(ctx, 999)
	assert.Error(t, err)
}

func TestUserRepositoryUniqueEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgresUserRepository(setupUserDB(t))

	require.NoError(t, repo.CreateUser(ctx, &models.User{DisplayName: "Alice", Email: "alice@example.com"}))
	err := repo.CreateUser(ctx, &models.User{DisplayName: "Imposter", Email: "alice@example.com"})
	assert.Error(t, err)
}
