package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"coursehub/internal/common"
	"coursehub/internal/common/security"
	"coursehub/internal/domain/model"
	"coursehub/internal/domain/repository"
	"coursehub/internal/platform/idgen"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const maxDisplayNameLen = 100

type IdentityService struct {
	userRepo repository.UserRepository
	hasher   security.PasswordHasher
	log      *zap.SugaredLogger
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewIdentityService(userRepo repository.UserRepository, hasher security.PasswordHasher, log *zap.SugaredLogger) *IdentityService {
	return &IdentityService{userRepo: userRepo, hasher: hasher, log: log, now: time.Now}
}

// CreateUser runs inside the caller's transaction so it can be paired with
// code consumption.
func (s *IdentityService) CreateUser(ctx context.Context, tx *sqlx.Tx, email, password, displayName string) (*model.User, *model.Profile, error) {
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, nil, err
	}
	if password == "" {
		return nil, nil, common.Validationf("password is required")
	}

	if _, err := s.userRepo.FindByEmail(ctx, tx, email); err == nil {
		return nil, nil, common.ErrDuplicateEmail
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           idgen.NewUserID(),
		Username:     email,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	if err := s.userRepo.Create(ctx, tx, user); err != nil {
		return nil, nil, fmt.Errorf("failed to create user: %w", err)
	}

	profile := &model.Profile{UserID: user.ID, DisplayName: displayName}
	if err := s.userRepo.CreateProfile(ctx, tx, profile); err != nil {
		return nil, nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return user, profile, nil
}

// Authenticate does the same amount of hashing work whether or not the
// email exists.
func (s *IdentityService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, nil, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.hasher.Verify(s.dummy(), password)
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !s.hasher.Verify(user.PasswordHash, password) {
		return nil, common.ErrInvalidCredentials
	}
	return user, nil
}

func (s *IdentityService) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash("not-a-real-password")
		if err != nil {
			s.log.Errorw("failed to build dummy password hash", "error", err)
			return
		}
		s.dummyHash = h
	})
	return s.dummyHash
}

// Profile loads the user and its profile; a missing profile is not an error.
func (s *IdentityService) Profile(ctx context.Context, userID int64) (*model.User, *model.Profile, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil, common.ErrUnauthorized
		}
		return nil, nil, fmt.Errorf("failed to find user: %w", err)
	}
	profile, err := s.userRepo.FindProfile(ctx, userID)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, nil, fmt.Errorf("failed to find profile: %w", err)
	}
	return user, profile, nil
}

func (s *IdentityService) Me(ctx context.Context, userID int64) (*model.UserPayload, error) {
	user, profile, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	payload := model.UserPayloadOf(user, profile)
	return &payload, nil
}

type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
}

func (s *IdentityService) UpdateProfile(ctx context.Context, userID int64, req UpdateProfileRequest) (*model.UserPayload, error) {
	user, profile, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		profile = &model.Profile{UserID: userID}
	}

	if req.DisplayName != nil {
		name, err := requireText("display_name", *req.DisplayName, maxDisplayNameLen)
		if err != nil {
			return nil, err
		}
		profile.DisplayName = name
	}
	if req.AvatarURL != nil {
		if *req.AvatarURL == "" {
			profile.AvatarURL = sql.NullString{}
		} else {
			u, err := url.Parse(*req.AvatarURL)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return nil, common.Validationf("avatar_url must be an http(s) URL")
			}
			profile.AvatarURL = sql.NullString{String: *req.AvatarURL, Valid: true}
		}
	}

	if err := s.userRepo.UpdateProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	payload := model.UserPayloadOf(user, profile)
	return &payload, nil
}
