package postgres

import (
	"context"
	"fmt"

	"github.com/rryowa/blogapi/internal/models"
	"github.com/rryowa/blogapi/internal/storage"
)

type CommentRepository struct {
	db storage.DBTX
}

func NewCommentRepository(db storage.DBTX) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) CreateComment(ctx context.Context, comment models.Comment) (*models.Comment, error) {
	query := `INSERT INTO comments (id, content, author_id, blog_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, content, author_id, blog_id, created_at`
	var created models.Comment
	err := r.db.QueryRowContext(ctx, query, comment.ID, comment.Content, comment.AuthorID, comment.BlogID).
		Scan(&created.ID, &created.Content, &created.AuthorID, &created.BlogID, &created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return &created, nil
}

func (r *CommentRepository) GetCommentsForBlog(ctx context.Context, blogID string) ([]models.CommentDTO, error) {
	query := `SELECT c.id, c.content, u.username, c.created_at
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.blog_id = $1
		ORDER BY c.created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, blogID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []models.CommentDTO
	for rows.Next() {
		var c models.CommentDTO
		if err := rows.Scan(&c.ID, &c.Content, &c.AuthorUsername, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comments: %w", err)
	}
	return comments, nil
}

func (r *CommentRepository) DeleteCommentsForBlog(ctx context.Context, blogID string) error {
	query := `DELETE FROM comments WHERE blog_id = $1`
	if _, err := r.db.ExecContext(ctx, query, blogID); err != nil {
		return fmt.Errorf("failed to delete comments: %w", err)
	}
	return nil
}
