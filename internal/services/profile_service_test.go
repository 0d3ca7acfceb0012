package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/vytor/upsimu/internal/errors"
	"github.com/vytor/upsimu/internal/models"
	"github.com/vytor/upsimu/internal/services"
	"github.com/vytor/upsimu/internal/testutil/mocks"
)

func TestProfileService_ListProfiles_NeverNil(t *testing.T) {
	repo := new(mocks.MockProfileRepository)
	repo.On("List", mock.Anything).Return(nil, nil)

	profiles, err := services.NewProfileService(repo).ListProfiles(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, profiles)
	assert.Empty(t, profiles)
}

func TestProfileService_CreateProfile(t *testing.T) {
	repo := new(mocks.MockProfileRepository)
	repo.On("Upsert", mock.Anything, "ada").Return(&models.Profile{ID: 1, Username: "ada"}, nil)
	svc := services.NewProfileService(repo)
	ctx := context.Background()

	p, err := svc.CreateProfile(ctx, "  ada  ")
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)

	_, err = svc.CreateProfile(ctx, "   ")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidation))

	_, err = svc.CreateProfile(ctx, strings.Repeat("x", 65))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidation))

	repo.AssertNumberOfCalls(t, "Upsert", 1)
}

func TestProfileService_GetProfile(t *testing.T) {
	repo := new(mocks.MockProfileRepository)
	repo.On("Get", mock.Anything, int64(1)).Return(&models.Profile{ID: 1}, nil)
	repo.On("Get", mock.Anything, int64(2)).Return(nil, nil)
	repo.On("Get", mock.Anything, int64(3)).Return(nil, errors.New("db down"))
	svc := services.NewProfileService(repo)
	ctx := context.Background()

	p, err := svc.GetProfile(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)

	_, err = svc.GetProfile(ctx, 2)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotFound))

	_, err = svc.GetProfile(ctx, 3)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInternal))
}

func TestProfileService_DeleteProfile(t *testing.T) {
	repo := new(mocks.MockProfileRepository)
	repo.On("Get", mock.Anything, int64(1)).Return(&models.Profile{ID: 1}, nil)
	repo.On("Get", mock.Anything, int64(2)).Return(nil, nil)
	repo.On("Delete", mock.Anything, int64(1)).Return(nil)
	svc := services.NewProfileService(repo)

	require.NoError(t, svc.DeleteProfile(context.Background(), 1))
	err := svc.DeleteProfile(context.Background(), 2)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotFound))

	repo.AssertNumberOfCalls(t, "Delete", 1)
}
