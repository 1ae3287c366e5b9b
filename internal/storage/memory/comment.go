package memory

import (
	"context"
	"sort"
	"time"

	"github.com/rryowa/blogapi/internal/models"
)

func (m *Storage) CreateComment(_ context.Context, comment models.Comment) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	comment.CreatedAt = time.Now()
	m.comments[comment.ID] = comment
	return &comment, nil
}

func (m *Storage) GetCommentsForBlog(_ context.Context, blogID string) ([]models.CommentDTO, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var dtos []models.CommentDTO
	for _, c := range m.comments {
		if c.BlogID != blogID {
			continue
		}
		username := ""
		if author, ok := m.users[c.AuthorID]; ok {
			username = author.Username
		}
		dtos = append(dtos, models.CommentDTO{
			ID:             c.ID,
			Content:        c.Content,
			AuthorUsername: username,
			CreatedAt:      c.CreatedAt,
		})
	}
	sort.Slice(dtos, func(i, j int) bool { return dtos[i].CreatedAt.Before(dtos[j].CreatedAt) })
	return dtos, nil
}

func (m *Storage) DeleteCommentsForBlog(_ context.Context, blogID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, c := range m.comments {
		if c.BlogID == blogID {
			delete(m.comments, id)
		}
	}
	return nil
}
