package market

import (
	"fmt"
	"strings"
	"time"

	"reuse-market/internal/marketerrors"
	"reuse-market/internal/models"
	"reuse-market/internal/repository"
	"reuse-market/utils"
)

// UserService defines the business logic for user profiles.
type UserService struct {
	repo repository.MarketDB
}

// NewUserService creates a new UserService instance
func NewUserService(repo repository.MarketDB) *UserService {
	return &UserService{
		repo: repo,
	}
}

// CreateUser registers a profile for an identity issued by the external
// auth provider. Karma starts at zero.
func (s *UserService) CreateUser(userID, email, name, pfpURL string) (models.User, error) {
	if email == "" {
		return models.User{}, fmt.Errorf("service: %w - email is required", marketerrors.ErrInvalidInput)
	}
	if userID == "" {
		userID = utils.GenerateID()
	}

	user := models.User{
		UserID:    userID,
		Name:      name,
		Email:     email,
		PfpURL:    pfpURL,
		Karma:     0,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.CreateUser(user); err != nil {
		return models.User{}, fmt.Errorf("service: failed to create user: %w", err)
	}

	return user, nil
}

// GetUser returns a public profile.
func (s *UserService) GetUser(userID string) (models.User, error) {
	if userID == "" {
		return models.User{}, fmt.Errorf("service: %w - empty user ID", marketerrors.ErrInvalidInput)
	}

	user, err := s.repo.GetUser(userID)
	if err != nil {
		return models.User{}, fmt.Errorf("service: failed to get user %s: %w", userID, err)
	}

	return user, nil
}

// GetMultipleUsers resolves a comma-separated id list, preserving request
// order and yielding nil for ids that do not resolve.
func (s *UserService) GetMultipleUsers(userIDs string) ([]*models.User, error) {
	userIDs = strings.TrimSpace(userIDs)
	if userIDs == "" {
		return []*models.User{}, nil
	}

	result := []*models.User{}
	for _, id := range strings.Split(userIDs, ",") {
		user, err := s.repo.GetUser(strings.TrimSpace(id))
		if err != nil {
			result = append(result, nil)
			continue
		}
		u := user
		result = append(result, &u)
	}

	return result, nil
}

// GetUserKarma returns a user's aggregate karma score.
func (s *UserService) GetUserKarma(userID string) (float64, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return 0, err
	}
	return user.Karma, nil
}
