package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rryowa/blogapi/internal/models"
	"github.com/rryowa/blogapi/internal/util"
)

// (POST /blog).
func (c *Controller) CreateBlog(ctx echo.Context) error {
	user, err := currentUser(ctx)
	if err != nil {
		return err
	}

	var req models.CreateBlogRequest
	if err := ctx.Bind(&req); err != nil {
		return util.NewValidationError("invalid request body")
	}

	blog, err := c.blogService.Create(ctx.Request().Context(), user.ID, req)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusCreated, map[string]interface{}{"blog": blog})
}

// (GET /blog/all).
func (c *Controller) GetAllBlogs(ctx echo.Context) error {
	blogs, err := c.blogService.GetAll(ctx.Request().Context())
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, map[string]interface{}{"blogs": blogs})
}

// (GET /blog/:id).
func (c *Controller) GetBlogByID(ctx echo.Context) error {
	blog, err := c.blogService.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, map[string]interface{}{"blog": blog})
}

// (PUT /blog).
func (c *Controller) UpdateBlog(ctx echo.Context) error {
	user, err := currentUser(ctx)
	if err != nil {
		return err
	}

	var req models.UpdateBlogRequest
	if err := ctx.Bind(&req); err != nil {
		return util.NewValidationError("invalid request body")
	}

	if err := c.blogService.Update(ctx.Request().Context(), user.ID, req); err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, map[string]string{"message": "blog updated successfully"})
}

// (DELETE /blog/:id).
func (c *Controller) DeleteBlog(ctx echo.Context) error {
	if err := c.blogService.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, map[string]string{"message": "blog deleted"})
}
