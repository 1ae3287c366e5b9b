package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rryowa/blogapi/internal/models"
)

type Storage struct {
	db *sql.DB
	*UserRepository
	*RefreshTokenRepository
	*BlogRepository
	*CommentRepository
}

func NewStorage(db *sql.DB) *Storage {
	return &Storage{
		db:                     db,
		UserRepository:         NewUserRepository(db),
		RefreshTokenRepository: NewRefreshTokenRepository(db),
		BlogRepository:         NewBlogRepository(db),
		CommentRepository:      NewCommentRepository(db),
	}
}

// RegisterTx creates the user and their first refresh-token record in one
// transaction, so a storage failure on either leaves no half-registered
// account behind.
func (s *Storage) RegisterTx(ctx context.Context, user models.User, refreshToken string) (*models.User, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	userRepoTx := NewUserRepository(tx)
	tokenRepoTx := NewRefreshTokenRepository(tx)

	created, err := userRepoTx.CreateUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to create user in tx: %w", err)
	}

	if err := tokenRepoTx.ReplaceRefreshToken(ctx, created.ID, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to store refresh token in tx: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return created, nil
}
