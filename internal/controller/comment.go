package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rryowa/blogapi/internal/models"
	"github.com/rryowa/blogapi/internal/util"
)

// (POST /comment).
func (c *Controller) CreateComment(ctx echo.Context) error {
	user, err := currentUser(ctx)
	if err != nil {
		return err
	}

	var req models.CreateCommentRequest
	if err := ctx.Bind(&req); err != nil {
		return util.NewValidationError("invalid request body")
	}

	if err := c.commentService.Create(ctx.Request().Context(), user.ID, req); err != nil {
		return err
	}

	return ctx.JSON(http.StatusCreated, map[string]string{"message": "comment created"})
}

// (GET /comment/:id) where :id is the blog id.
func (c *Controller) GetComments(ctx echo.Context) error {
	comments, err := c.commentService.ListForBlog(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, map[string]interface{}{"data": comments})
}
