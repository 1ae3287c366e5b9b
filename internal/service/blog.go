package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rryowa/blogapi/internal/models"
	"github.com/rryowa/blogapi/internal/storage"
	"github.com/rryowa/blogapi/internal/util"
)

type BlogService struct {
	storage storage.Storage
	photos  PhotoStore
	log     *zap.SugaredLogger
}

func NewBlogService(s storage.Storage, photos PhotoStore, log *zap.SugaredLogger) *BlogService {
	return &BlogService{
		storage: s,
		photos:  photos,
		log:     log,
	}
}

func (s *BlogService) Create(ctx context.Context, authorID string, req models.CreateBlogRequest) (*models.BlogDTO, error) {
	if req.Title == "" {
		return nil, util.NewValidationError("title is required")
	}
	if req.Content == "" {
		return nil, util.NewValidationError("content is required")
	}
	if req.Photo == "" {
		return nil, util.NewValidationError("photo is required")
	}

	photoPath, err := s.photos.SavePhoto(req.Photo, authorID)
	if err != nil {
		return nil, err
	}

	blog := models.Blog{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Content:   req.Content,
		AuthorID:  authorID,
		PhotoPath: photoPath,
	}

	created, err := s.storage.CreateBlog(ctx, blog)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.NewPersistenceError("unable to create blog"), err)
	}

	return models.NewBlogDTO(created), nil
}

func (s *BlogService) GetAll(ctx context.Context) ([]models.BlogDTO, error) {
	blogs, err := s.storage.GetAllBlogs(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.NewPersistenceError("unable to list blogs"), err)
	}

	dtos := make([]models.BlogDTO, 0, len(blogs))
	for i := range blogs {
		dtos = append(dtos, *models.NewBlogDTO(&blogs[i]))
	}
	return dtos, nil
}

func (s *BlogService) GetByID(ctx context.Context, id string) (*models.BlogDetailsDTO, error) {
	if err := util.ValidateID("blog id", id); err != nil {
		return nil, err
	}

	details, err := s.storage.GetBlogDetails(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrBlogNotFound) {
			return nil, util.NewNotFoundError("blog not found")
		}
		return nil, fmt.Errorf("%w: %v", util.NewPersistenceError("unable to get blog"), err)
	}
	return details, nil
}

func (s *BlogService) Update(ctx context.Context, authorID string, req models.UpdateBlogRequest) error {
	if err := util.ValidateID("blog id", req.BlogID); err != nil {
		return err
	}
	if req.Title == "" {
		return util.NewValidationError("title is required")
	}
	if req.Content == "" {
		return util.NewValidationError("content is required")
	}

	blog, err := s.storage.GetBlogByID(ctx, req.BlogID)
	if err != nil {
		if errors.Is(err, storage.ErrBlogNotFound) {
			return util.NewNotFoundError("blog not found")
		}
		return fmt.Errorf("%w: %v", util.NewPersistenceError("unable to get blog"), err)
	}

	photoPath := ""
	if req.Photo != "" {
		if blog.PhotoPath != "" {
			if err := s.photos.DeleteByURL(blog.PhotoPath); err != nil {
				s.log.Warnw("failed to delete replaced photo", "blog", blog.ID, "error", err)
			}
		}
		photoPath, err = s.photos.SavePhoto(req.Photo, authorID)
		if err != nil {
			return err
		}
	}

	if err := s.storage.UpdateBlog(ctx, req.BlogID, req.Title, req.Content, photoPath); err != nil {
		return fmt.Errorf("%w: %v", util.NewPersistenceError("unable to update blog"), err)
	}
	return nil
}

// Delete removes a blog together with its comments and stored photo.
func (s *BlogService) Delete(ctx context.Context, id string) error {
	if err := util.ValidateID("blog id", id); err != nil {
		return err
	}

	blog, err := s.storage.GetBlogByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrBlogNotFound) {
			return util.NewNotFoundError("blog not found")
		}
		return fmt.Errorf("%w: %v", util.NewPersistenceError("unable to get blog"), err)
	}

	if err := s.storage.DeleteCommentsForBlog(ctx, id); err != nil {
		return fmt.Errorf("%w: %v", util.NewPersistenceError("unable to delete comments"), err)
	}
	if err := s.storage.DeleteBlog(ctx, id); err != nil {
		return fmt.Errorf("%w: %v", util.NewPersistenceError("unable to delete blog"), err)
	}

	if blog.PhotoPath != "" {
		if err := s.photos.DeleteByURL(blog.PhotoPath); err != nil {
			s.log.Warnw("failed to delete blog photo", "blog", id, "error", err)
		}
	}
	return nil
}
