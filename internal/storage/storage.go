package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rryowa/blogapi/internal/models"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrBlogNotFound    = errors.New("blog not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrTokenNotFound   = errors.New("refresh token not found")
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so repositories can run
// inside or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Storage interface {
	UserRepository
	RefreshTokenRepository
	BlogRepository
	CommentRepository

	// RegisterTx creates the user and stores their first refresh token
	// atomically.
	RegisterTx(ctx context.Context, user models.User, refreshToken string) (*models.User, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
}

type RefreshTokenRepository interface {
	// ReplaceRefreshToken atomically sets token as the current refresh
	// token for userID, overwriting any previous value (one record per
	// user).
	ReplaceRefreshToken(ctx context.Context, userID, token string) error
	GetRefreshToken(ctx context.Context, userID string) (*models.RefreshToken, error)
	// DeleteRefreshTokenByValue removes the record holding exactly this
	// token value. Deleting an absent token is not an error.
	DeleteRefreshTokenByValue(ctx context.Context, token string) error
}

type BlogRepository interface {
	CreateBlog(ctx context.Context, blog models.Blog) (*models.Blog, error)
	GetAllBlogs(ctx context.Context) ([]models.Blog, error)
	GetBlogByID(ctx context.Context, id string) (*models.Blog, error)
	GetBlogDetails(ctx context.Context, id string) (*models.BlogDetailsDTO, error)
	UpdateBlog(ctx context.Context, id, title, content, photoPath string) error
	DeleteBlog(ctx context.Context, id string) error
}

type CommentRepository interface {
	CreateComment(ctx context.Context, comment models.Comment) (*models.Comment, error)
	GetCommentsForBlog(ctx context.Context, blogID string) ([]models.CommentDTO, error)
	DeleteCommentsForBlog(ctx context.Context, blogID string) error
}

// TokenDenylist is the access-token blacklist consulted before signature
// verification.
type TokenDenylist interface {
	InvalidateToken(ctx context.Context, token string, expiration time.Duration) error
	IsTokenInvalidated(ctx context.Context, token string) (bool, error)
}
