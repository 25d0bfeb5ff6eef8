package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/zdenkokanos/MTAA-backend/models"
	"github.com/zdenkokanos/MTAA-backend/repositories"
)

func TestChangePassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("old-pass"), bcrypt.MinCost)
	require.NoError(t, err)

	var newHash string
	users := &fakeUserRepo{
		GetByIDFunc: func(ctx context.Context, id int) (*models.User, error) {
			if id != 1 {
				return nil, repositories.ErrUserNotFound
			}
			return &models.User{ID: 1, PasswordHash: string(hash)}, nil
		},
		UpdatePasswordFunc: func(ctx context.Context, id int, h string) error {
			newHash = h
			return nil
		},
	}
	svc := NewUserService(passthroughTx{}, users, nil, nil, nil, bcrypt.MinCost, discardLogger())
	ctx := context.Background()

	err = svc.ChangePassword(ctx, 1, ChangePasswordInput{OldPassword: "wrong", NewPassword: "new-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Empty(t, newHash)

	err = svc.ChangePassword(ctx, 1, ChangePasswordInput{OldPassword: "old-pass", NewPassword: "123"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	require.NoError(t, svc.ChangePassword(ctx, 1, ChangePasswordInput{OldPassword: "old-pass", NewPassword: "new-pass"}))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(newHash), []byte("new-pass")))

	err = svc.ChangePassword(ctx, 2, ChangePasswordInput{OldPassword: "old-pass", NewPassword: "new-pass"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdatePreferences(t *testing.T) {
	var gotLat, gotLon *float64
	var gotCategories []int
	setCalled := false
	users := &fakeUserRepo{
		UpdatePreferencesFunc: func(ctx context.Context, id int, location *string, lat, lon *float64) error {
			gotLat, gotLon = lat, lon
			return nil
		},
		SetPreferredCategoriesFunc: func(ctx context.Context, id int, categoryIDs []int) error {
			setCalled = true
			gotCategories = categoryIDs
			return nil
		},
		GetByIDFunc: func(ctx context.Context, id int) (*models.User, error) {
			return &models.User{ID: id, PreferredLatitude: gotLat, PreferredLongitude: gotLon}, nil
		},
		ListPreferredCategoryIDsFunc: func(ctx context.Context, id int) ([]int, error) {
			return gotCategories, nil
		},
	}
	svc := NewUserService(passthroughTx{}, users, nil, nil, nil, bcrypt.MinCost, discardLogger())
	ctx := context.Background()

	user, err := svc.UpdatePreferences(ctx, 4, UpdatePreferencesInput{
		PreferredLatitude:  floatPtr(48.7),
		PreferredLongitude: floatPtr(21.2),
		CategoryIDs:        []int{2, 3},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, user.PreferredCategoryIDs)
	assert.InDelta(t, 48.7, *user.PreferredLatitude, 1e-9)

	setCalled = false
	_, err = svc.UpdatePreferences(ctx, 4, UpdatePreferencesInput{PreferredLatitude: floatPtr(1), PreferredLongitude: floatPtr(1)})
	require.NoError(t, err)
	assert.False(t, setCalled, "categories stay untouched when not provided")

	_, err = svc.UpdatePreferences(ctx, 4, UpdatePreferencesInput{PreferredLatitude: floatPtr(1)})
	assert.ErrorIs(t, err, ErrInvalidCoordinates)

	_, err = svc.UpdatePreferences(ctx, 4, UpdatePreferencesInput{PreferredLatitude: floatPtr(1), PreferredLongitude: floatPtr(200)})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUserUploadImageWithoutStorage(t *testing.T) {
	svc := NewUserService(passthroughTx{}, &fakeUserRepo{}, nil, nil, nil, bcrypt.MinCost, discardLogger())

	_, err := svc.UploadImage(context.Background(), 1, strings.NewReader("x"), "image/png")
	assert.ErrorIs(t, err, ErrImageUploadNotAvailable)
}
