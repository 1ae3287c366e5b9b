package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/rryowa/blogapi/internal/storage"
	"github.com/rryowa/blogapi/internal/util"
)

var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenInvalid   = errors.New("token invalid")
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenRevoked   = errors.New("token revoked")
)

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenService signs and verifies the access/refresh pair and owns the
// server-side refresh-token record. Access and refresh tokens use
// independent signing keys.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	tokens        storage.RefreshTokenRepository
	denylist      storage.TokenDenylist
}

func NewTokenService(cfg *util.TokenConfig, tokens storage.RefreshTokenRepository, denylist storage.TokenDenylist) *TokenService {
	return &TokenService{
		accessSecret:  cfg.AccessSecretKey,
		refreshSecret: cfg.RefreshSecretKey,
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		tokens:        tokens,
		denylist:      denylist,
	}
}

func (ts *TokenService) SignAccessToken(userID string) (string, error) {
	return ts.sign(userID, ts.accessSecret, ts.accessTTL)
}

func (ts *TokenService) SignRefreshToken(userID string) (string, error) {
	return ts.sign(userID, ts.refreshSecret, ts.refreshTTL)
}

func (ts *TokenService) sign(userID string, secret []byte, ttl time.Duration) (string, error) {
	if userID == "" {
		return "", util.NewSigningError("cannot sign token without a subject")
	}
	if len(secret) == 0 {
		return "", util.NewSigningError("signing key is unavailable")
	}

	// The JTI makes every issued token unique even when two are signed
	// for the same subject within the same second; rotation depends on
	// consecutive refresh tokens never being equal.
	now := time.Now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	signedToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("%w: %v", util.NewSigningError("unable to sign token"), err)
	}
	return signedToken, nil
}

// VerifyAccessToken returns the subject user id of a valid access token.
func (ts *TokenService) VerifyAccessToken(token string) (string, error) {
	return ts.verify(token, ts.accessSecret)
}

// VerifyRefreshToken checks only the cryptographic validity; whether the
// value is the currently stored one is CheckStoredRefreshToken's job.
func (ts *TokenService) VerifyRefreshToken(token string) (string, error) {
	return ts.verify(token, ts.refreshSecret)
}

func (ts *TokenService) verify(token string, secret []byte) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(util.JWTLeeWay),
		jwt.WithExpirationRequired(),
	}

	parsedToken, err := jwt.ParseWithClaims(
		token,
		&jwt.RegisteredClaims{},
		func(t *jwt.Token) (interface{}, error) {
			return secret, nil
		},
		opts...,
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("%w: %w", ErrTokenExpired, err)
		}
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return "", fmt.Errorf("%w: %w", ErrTokenMalformed, err)
		}
		return "", fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	if parsedToken == nil || !parsedToken.Valid {
		return "", ErrTokenInvalid
	}

	claims, ok := parsedToken.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrTokenInvalid
	}

	return claims.Subject, nil
}

// StoreRefreshToken replaces the current refresh-token record for userID
// with token. There is exactly one record per user; every issuance path
// goes through this upsert.
func (ts *TokenService) StoreRefreshToken(ctx context.Context, token, userID string) error {
	if err := ts.tokens.ReplaceRefreshToken(ctx, userID, token); err != nil {
		return fmt.Errorf("%w: %v", util.NewPersistenceError("unable to store refresh token"), err)
	}
	return nil
}

// CheckStoredRefreshToken enforces the rotation invariant: the presented
// token must match the stored value for the user exactly.
func (ts *TokenService) CheckStoredRefreshToken(ctx context.Context, userID, token string) error {
	stored, err := ts.tokens.GetRefreshToken(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			return util.NewAuthenticationError("unauthorized")
		}
		return fmt.Errorf("%w: %v", util.NewPersistenceError("unable to look up refresh token"), err)
	}
	if stored.Token != token {
		return util.NewAuthenticationError("unauthorized")
	}
	return nil
}

func (ts *TokenService) DeleteRefreshToken(ctx context.Context, token string) error {
	if err := ts.tokens.DeleteRefreshTokenByValue(ctx, token); err != nil {
		return fmt.Errorf("%w: %v", util.NewPersistenceError("unable to delete refresh token"), err)
	}
	return nil
}

// InvalidateAccessToken denylists an access token for the remainder of its
// cryptographic life, so logout revokes it immediately.
func (ts *TokenService) InvalidateAccessToken(ctx context.Context, accessToken string) error {
	claims, err := ts.getClaimsFromToken(accessToken)
	if err != nil {
		return fmt.Errorf("get claims from token: %w", err)
	}
	if claims.ExpiresAt == nil {
		return ErrTokenInvalid
	}

	expiration := time.Until(claims.ExpiresAt.Time)
	if expiration <= 0 {
		return nil
	}

	if err := ts.denylist.InvalidateToken(ctx, accessToken, expiration); err != nil {
		return fmt.Errorf("invalidate token: %w", err)
	}
	return nil
}

// IsAccessTokenInvalidated is the first verification step, before signature
// and expiry checks.
func (ts *TokenService) IsAccessTokenInvalidated(ctx context.Context, accessToken string) (bool, error) {
	isInvalidated, err := ts.denylist.IsTokenInvalidated(ctx, accessToken)
	if err != nil {
		return false, fmt.Errorf("is token invalidated: %w", err)
	}
	return isInvalidated, nil
}

func (ts *TokenService) getClaimsFromToken(token string) (*jwt.RegisteredClaims, error) {
	parsedToken, _, err := new(jwt.Parser).ParseUnverified(token, &jwt.RegisteredClaims{})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenMalformed, err)
	}

	claims, ok := parsedToken.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}
