package service

import (
	"context"
	"fmt"

	"coursehub/internal/common"
	"coursehub/internal/common/security"
	"coursehub/internal/domain/model"
	"coursehub/internal/platform/database"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const maxCodeLen = 16

type AuthService struct {
	identity     *IdentityService
	verification *VerificationService
	tx           database.Transactor
	log          *zap.SugaredLogger
	issueToken   func(userID int64) (string, error)
}

func NewAuthService(identity *IdentityService, verification *VerificationService, tx database.Transactor, log *zap.SugaredLogger) *AuthService {
	return &AuthService{
		identity:     identity,
		verification: verification,
		tx:           tx,
		log:          log,
		issueToken:   security.GenerateToken,
	}
}

type SendCodeRequest struct {
	Email string `json:"email"`
}

type RegisterRequest struct {
	Nickname         string `json:"nickname"`
	Email            string `json:"email"`
	VerificationCode string `json:"verification_code"`
	Password         string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Success bool              `json:"success"`
	User    model.UserPayload `json:"user"`
	Token   string            `json:"token"`
}

func (s *AuthService) SendCode(ctx context.Context, req SendCodeRequest) error {
	return s.verification.SendCode(ctx, req.Email)
}

// Register consumes the code and creates the user in one transaction; a
// failure in either step leaves both untouched.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	nickname, err := requireText("nickname", req.Nickname, maxDisplayNameLen)
	if err != nil {
		return nil, err
	}
	email := NormalizeEmail(req.Email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if req.VerificationCode == "" || len(req.VerificationCode) > maxCodeLen {
		return nil, common.Validationf("verification_code is required")
	}
	if req.Password == "" {
		return nil, common.Validationf("password is required")
	}

	var user *model.User
	var profile *model.Profile
	err = s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.verification.ConsumeCode(ctx, tx, email, req.VerificationCode); err != nil {
			return err
		}
		var err error
		user, profile, err = s.identity.CreateUser(ctx, tx, email, req.Password, nickname)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Infow("user registered", "user_id", user.ID)

	return s.respond(user, profile)
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, common.Validationf("email and password are required")
	}
	user, err := s.identity.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	_, profile, err := s.identity.Profile(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return s.respond(user, profile)
}

func (s *AuthService) respond(user *model.User, profile *model.Profile) (*AuthResponse, error) {
	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResponse{Success: true, User: model.UserPayloadOf(user, profile), Token: token}, nil
}
