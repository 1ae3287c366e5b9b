package memory

import (
	"context"
	"sort"
	"time"

	"github.com/rryowa/blogapi/internal/models"
	"github.com/rryowa/blogapi/internal/storage"
)

func (m *Storage) CreateBlog(_ context.Context, blog models.Blog) (*models.Blog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	blog.CreatedAt = time.Now()
	m.blogs[blog.ID] = blog
	return &blog, nil
}

func (m *Storage) GetAllBlogs(_ context.Context) ([]models.Blog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	blogs := make([]models.Blog, 0, len(m.blogs))
	for _, b := range m.blogs {
		blogs = append(blogs, b)
	}
	sort.Slice(blogs, func(i, j int) bool { return blogs[i].CreatedAt.After(blogs[j].CreatedAt) })
	return blogs, nil
}

func (m *Storage) GetBlogByID(_ context.Context, id string) (*models.Blog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.blogs[id]
	if !ok {
		return nil, storage.ErrBlogNotFound
	}
	return &b, nil
}

func (m *Storage) GetBlogDetails(_ context.Context, id string) (*models.BlogDetailsDTO, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.blogs[id]
	if !ok {
		return nil, storage.ErrBlogNotFound
	}
	author, ok := m.users[b.AuthorID]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return &models.BlogDetailsDTO{
		ID:             b.ID,
		Title:          b.Title,
		Content:        b.Content,
		PhotoPath:      b.PhotoPath,
		AuthorID:       b.AuthorID,
		AuthorUsername: author.Username,
		CreatedAt:      b.CreatedAt,
	}, nil
}

func (m *Storage) UpdateBlog(_ context.Context, id, title, content, photoPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.blogs[id]
	if !ok {
		return storage.ErrBlogNotFound
	}
	b.Title = title
	b.Content = content
	if photoPath != "" {
		b.PhotoPath = photoPath
	}
	m.blogs[id] = b
	return nil
}

func (m *Storage) DeleteBlog(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.blogs, id)
	return nil
}
