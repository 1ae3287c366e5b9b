package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rryowa/blogapi/internal/models"
	"github.com/rryowa/blogapi/internal/storage"
)

type BlogRepository struct {
	db storage.DBTX
}

func NewBlogRepository(db storage.DBTX) *BlogRepository {
	return &BlogRepository{db: db}
}

func (r *BlogRepository) CreateBlog(ctx context.Context, blog models.Blog) (*models.Blog, error) {
	query := `INSERT INTO blogs (id, title, content, author_id, photo_path)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, title, content, author_id, photo_path, created_at`
	var created models.Blog
	err := r.db.QueryRowContext(ctx, query, blog.ID, blog.Title, blog.Content, blog.AuthorID, blog.PhotoPath).
		Scan(&created.ID, &created.Title, &created.Content, &created.AuthorID, &created.PhotoPath, &created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create blog: %w", err)
	}
	return &created, nil
}

func (r *BlogRepository) GetAllBlogs(ctx context.Context) ([]models.Blog, error) {
	query := `SELECT id, title, content, author_id, photo_path, created_at FROM blogs ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list blogs: %w", err)
	}
	defer rows.Close()

	var blogs []models.Blog
	for rows.Next() {
		var b models.Blog
		if err := rows.Scan(&b.ID, &b.Title, &b.Content, &b.AuthorID, &b.PhotoPath, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan blog: %w", err)
		}
		blogs = append(blogs, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate blogs: %w", err)
	}
	return blogs, nil
}

func (r *BlogRepository) GetBlogByID(ctx context.Context, id string) (*models.Blog, error) {
	query := `SELECT id, title, content, author_id, photo_path, created_at FROM blogs WHERE id = $1`
	var b models.Blog
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&b.ID, &b.Title, &b.Content, &b.AuthorID, &b.PhotoPath, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrBlogNotFound
		}
		return nil, fmt.Errorf("failed to get blog: %w", err)
	}
	return &b, nil
}

// GetBlogDetails resolves the author username in the same query.
func (r *BlogRepository) GetBlogDetails(ctx context.Context, id string) (*models.BlogDetailsDTO, error) {
	query := `SELECT b.id, b.title, b.content, b.photo_path, b.author_id, u.username, b.created_at
		FROM blogs b
		JOIN users u ON u.id = b.author_id
		WHERE b.id = $1`
	var d models.BlogDetailsDTO
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&d.ID, &d.Title, &d.Content, &d.PhotoPath, &d.AuthorID, &d.AuthorUsername, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrBlogNotFound
		}
		return nil, fmt.Errorf("failed to get blog details: %w", err)
	}
	return &d, nil
}

func (r *BlogRepository) UpdateBlog(ctx context.Context, id, title, content, photoPath string) error {
	var err error
	if photoPath != "" {
		query := `UPDATE blogs SET title = $2, content = $3, photo_path = $4 WHERE id = $1`
		_, err = r.db.ExecContext(ctx, query, id, title, content, photoPath)
	} else {
		query := `UPDATE blogs SET title = $2, content = $3 WHERE id = $1`
		_, err = r.db.ExecContext(ctx, query, id, title, content)
	}
	if err != nil {
		return fmt.Errorf("failed to update blog: %w", err)
	}
	return nil
}

func (r *BlogRepository) DeleteBlog(ctx context.Context, id string) error {
	query := `DELETE FROM blogs WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete blog: %w", err)
	}
	return nil
}
