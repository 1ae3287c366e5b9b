package models

type CreateBlogRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Photo   string `json:"photo"`
}

type UpdateBlogRequest struct {
	BlogID  string `json:"blogId"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Photo   string `json:"photo,omitempty"`
}

type CreateCommentRequest struct {
	Content string `json:"content"`
	Blog    string `json:"blog"`
}
