package market

import (
	"testing"

	"reuse-market/internal/marketerrors"
	model "reuse-market/internal/models"
	"reuse-market/internal/repository"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Tests CreateUser
func TestUserService_CreateUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := repository.NewMockMarketDB(ctrl)
	service := NewUserService(mockRepo)

	t.Run("keeps_provider_issued_id", func(t *testing.T) {
		mockRepo.EXPECT().CreateUser(gomock.Any()).DoAndReturn(func(user model.User) error {
			require.Equal(t, "u1", user.UserID)
			require.Equal(t, 0.0, user.Karma)
			return nil
		})

		user, err := service.CreateUser("u1", "ada@campus.edu", "Ada", "")
		require.NoError(t, err)
		require.Equal(t, "u1", user.UserID)
	})

	t.Run("generates_id_when_absent", func(t *testing.T) {
		mockRepo.EXPECT().CreateUser(gomock.Any()).Return(nil)

		user, err := service.CreateUser("", "grace@campus.edu", "Grace", "")
		require.NoError(t, err)
		_, parseErr := uuid.Parse(user.UserID)
		require.NoError(t, parseErr)
	})

	t.Run("requires_email", func(t *testing.T) {
		_, err := service.CreateUser("u1", "", "Ada", "")
		require.ErrorIs(t, err, marketerrors.ErrInvalidInput)
	})
}

// Tests GetMultipleUsers
func TestUserService_GetMultipleUsers(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := repository.NewMockMarketDB(ctrl)
	service := NewUserService(mockRepo)

	t.Run("preserves_order_and_nils_unknown_ids", func(t *testing.T) {
		mockRepo.EXPECT().GetUser("u1").Return(model.User{UserID: "u1", Name: "Ada"}, nil)
		mockRepo.EXPECT().GetUser("ghost").Return(model.User{}, marketerrors.ErrUserNotFound)
		mockRepo.EXPECT().GetUser("u2").Return(model.User{UserID: "u2", Name: "Grace"}, nil)

		users, err := service.GetMultipleUsers("u1, ghost ,u2")
		require.NoError(t, err)
		require.Len(t, users, 3)
		require.Equal(t, "Ada", users[0].Name)
		require.Nil(t, users[1])
		require.Equal(t, "Grace", users[2].Name)
	})

	t.Run("empty_input_is_empty_result", func(t *testing.T) {
		users, err := service.GetMultipleUsers("  ")
		require.NoError(t, err)
		require.Empty(t, users)
	})
}

// Tests GetUserKarma
func TestUserService_GetUserKarma(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := repository.NewMockMarketDB(ctrl)
	service := NewUserService(mockRepo)

	t.Run("returns_stored_karma", func(t *testing.T) {
		mockRepo.EXPECT().GetUser("u1").Return(model.User{UserID: "u1", Karma: 12}, nil)

		karma, err := service.GetUserKarma("u1")
		require.NoError(t, err)
		require.Equal(t, 12.0, karma)
	})

	t.Run("unknown_user", func(t *testing.T) {
		mockRepo.EXPECT().GetUser("ghost").Return(model.User{}, marketerrors.ErrUserNotFound)

		_, err := service.GetUserKarma("ghost")
		require.ErrorIs(t, err, marketerrors.ErrUserNotFound)
	})
}
