package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/rryowa/blogapi/internal/models"
	"github.com/rryowa/blogapi/internal/storage"
	"github.com/rryowa/blogapi/internal/util"
)

// AuthService orchestrates register, login, logout and refresh over the
// token service and the user store.
type AuthService struct {
	tokens  *TokenService
	storage storage.Storage
	webhook *WebhookService
	log     *zap.SugaredLogger
}

func NewAuthService(tokens *TokenService, s storage.Storage, webhook *WebhookService, log *zap.SugaredLogger) *AuthService {
	return &AuthService{
		tokens:  tokens,
		storage: s,
		webhook: webhook,
		log:     log,
	}
}

func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.UserDTO, TokenPair, error) {
	if err := validateRegisterRequest(req); err != nil {
		return nil, TokenPair{}, err
	}

	emailInUse, err := s.storage.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, TokenPair{}, fmt.Errorf("%w: %v", util.NewPersistenceError("unable to check email"), err)
	}
	if emailInUse {
		return nil, TokenPair{}, util.NewConflictError("email is already registered")
	}

	usernameInUse, err := s.storage.UsernameExists(ctx, req.Username)
	if err != nil {
		return nil, TokenPair{}, fmt.Errorf("%w: %v", util.NewPersistenceError("unable to check username"), err)
	}
	if usernameInUse {
		return nil, TokenPair{}, util.NewConflictError("username is already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), util.BcryptCost)
	if err != nil {
		return nil, TokenPair{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hash),
	}

	pair, err := s.signPair(user.ID)
	if err != nil {
		return nil, TokenPair{}, err
	}

	created, err := s.storage.RegisterTx(ctx, user, pair.RefreshToken)
	if err != nil {
		return nil, TokenPair{}, fmt.Errorf("%w: %v", util.NewPersistenceError("unable to create user"), err)
	}

	dto := models.NewUserDTO(created)
	s.webhook.NotifyUserRegistered(context.WithoutCancel(ctx), dto)

	return dto, pair, nil
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.UserDTO, TokenPair, error) {
	if err := util.ValidateUsername(req.Username); err != nil {
		return nil, TokenPair{}, err
	}
	if err := util.ValidatePassword(req.Password); err != nil {
		return nil, TokenPair{}, err
	}

	user, err := s.storage.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, TokenPair{}, util.NewAuthenticationError("invalid username")
		}
		return nil, TokenPair{}, fmt.Errorf("%w: %v", util.NewPersistenceError("unable to look up user"), err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, TokenPair{}, util.NewAuthenticationError("invalid password")
	}

	pair, err := s.signPair(user.ID)
	if err != nil {
		return nil, TokenPair{}, err
	}

	// Rotation point for returning users: the upsert replaces whatever
	// refresh token was stored before.
	if err := s.tokens.StoreRefreshToken(ctx, pair.RefreshToken, user.ID); err != nil {
		return nil, TokenPair{}, err
	}

	return models.NewUserDTO(user), pair, nil
}

// Logout deletes the stored refresh token (idempotent) and denylists the
// presented access token for its remaining life.
func (s *AuthService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if err := s.tokens.DeleteRefreshToken(ctx, refreshToken); err != nil {
		return err
	}

	if accessToken != "" {
		if err := s.tokens.InvalidateAccessToken(ctx, accessToken); err != nil {
			// The session is already gone; a denylist failure only
			// shortens nothing, so it must not fail the logout.
			s.log.Warnw("failed to denylist access token on logout", "error", err)
		}
	}

	return nil
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.UserDTO, TokenPair, error) {
	userID, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, TokenPair{}, util.NewAuthenticationError("unauthorized")
	}

	// The token must also be the currently stored value; a rotated-out or
	// revoked token fails here even though its signature still verifies.
	if err := s.tokens.CheckStoredRefreshToken(ctx, userID, refreshToken); err != nil {
		return nil, TokenPair{}, err
	}

	pair, err := s.signPair(userID)
	if err != nil {
		return nil, TokenPair{}, err
	}

	if err := s.tokens.StoreRefreshToken(ctx, pair.RefreshToken, userID); err != nil {
		return nil, TokenPair{}, err
	}

	user, err := s.storage.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, TokenPair{}, util.NewNotFoundError("user not found")
		}
		return nil, TokenPair{}, fmt.Errorf("%w: %v", util.NewPersistenceError("unable to look up user"), err)
	}

	return models.NewUserDTO(user), pair, nil
}

// Authenticate resolves the user behind an access token. It backs the auth
// middleware and never refreshes anything itself.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*models.UserDTO, error) {
	isInvalidated, err := s.tokens.IsAccessTokenInvalidated(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.NewPersistenceError("unable to check token"), err)
	}
	if isInvalidated {
		return nil, util.NewAuthenticationError("invalid access token")
	}

	userID, err := s.tokens.VerifyAccessToken(accessToken)
	if err != nil {
		return nil, util.NewAuthenticationError("invalid access token")
	}

	user, err := s.storage.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, util.NewNotFoundError("user not found")
		}
		return nil, fmt.Errorf("%w: %v", util.NewPersistenceError("unable to look up user"), err)
	}

	return models.NewUserDTO(user), nil
}

func (s *AuthService) signPair(userID string) (TokenPair, error) {
	accessToken, err := s.tokens.SignAccessToken(userID)
	if err != nil {
		return TokenPair{}, err
	}
	refreshToken, err := s.tokens.SignRefreshToken(userID)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func validateRegisterRequest(req models.RegisterRequest) error {
	if err := util.ValidateUsername(req.Username); err != nil {
		return err
	}
	if err := util.ValidateName(req.Name); err != nil {
		return err
	}
	if err := util.ValidateEmail(req.Email); err != nil {
		return err
	}
	if err := util.ValidatePassword(req.Password); err != nil {
		return err
	}
	if req.ConfirmPassword != req.Password {
		return util.NewValidationError("confirmPassword does not match password")
	}
	return nil
}
