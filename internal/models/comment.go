package models

import "time"

type Comment struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	AuthorID  string    `json:"author_id"`
	BlogID    string    `json:"blog_id"`
	CreatedAt time.Time `json:"created_at"`
}

type CommentDTO struct {
	ID             string    `json:"id"`
	Content        string    `json:"content"`
	AuthorUsername string    `json:"author_username"`
	CreatedAt      time.Time `json:"created_at"`
}
