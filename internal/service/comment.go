package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/rryowa/blogapi/internal/models"
	"github.com/rryowa/blogapi/internal/storage"
	"github.com/rryowa/blogapi/internal/util"
)

type CommentService struct {
	storage storage.Storage
}

func NewCommentService(s storage.Storage) *CommentService {
	return &CommentService{storage: s}
}

func (s *CommentService) Create(ctx context.Context, authorID string, req models.CreateCommentRequest) error {
	if req.Content == "" {
		return util.NewValidationError("content is required")
	}
	if err := util.ValidateID("blog id", req.Blog); err != nil {
		return err
	}

	if _, err := s.storage.GetBlogByID(ctx, req.Blog); err != nil {
		if errors.Is(err, storage.ErrBlogNotFound) {
			return util.NewNotFoundError("blog not found")
		}
		return fmt.Errorf("%w: %v", util.NewPersistenceError("unable to get blog"), err)
	}

	comment := models.Comment{
		ID:       uuid.NewString(),
		Content:  req.Content,
		AuthorID: authorID,
		BlogID:   req.Blog,
	}
	if _, err := s.storage.CreateComment(ctx, comment); err != nil {
		return fmt.Errorf("%w: %v", util.NewPersistenceError("unable to create comment"), err)
	}
	return nil
}

func (s *CommentService) ListForBlog(ctx context.Context, blogID string) ([]models.CommentDTO, error) {
	if err := util.ValidateID("blog id", blogID); err != nil {
		return nil, err
	}

	comments, err := s.storage.GetCommentsForBlog(ctx, blogID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.NewPersistenceError("unable to list comments"), err)
	}
	if comments == nil {
		comments = []models.CommentDTO{}
	}
	return comments, nil
}
