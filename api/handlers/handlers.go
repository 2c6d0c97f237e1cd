package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"post-manager/dto"
	"post-manager/internal/logger"
	"post-manager/repositories"
	"post-manager/services"
)

// ListPostsHandler godoc
// @Summary      List posts
// @Description  List posts ordered by id. _limit <= 0 or absent means no limit.
// @Tags         posts
// @Param        _limit      query  int     false  "Maximum number of posts"
// @Param        title_like  query  string  false  "Case-insensitive title substring"
// @Produce      json
// @Success      200  {array}   dto.PostDTO
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /posts [get]
func ListPostsHandler(svc *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in services.ListPostsInput
		in.Limit, _ = strconv.Atoi(c.Query("_limit"))
		in.TitleLike = c.Query("title_like")

		items, err := svc.List(c.Request.Context(), in)
		if err != nil {
			serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

// GetPostHandler godoc
// @Summary      Get post by id
// @Tags         posts
// @Param        id   path  int  true  "Post id"
// @Produce      json
// @Success      200  {object}  dto.PostDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /posts/{id} [get]
func GetPostHandler(svc *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		post, err := svc.GetByID(c.Request.Context(), id)
		if errors.Is(err, repositories.ErrPostNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "not found"})
			return
		}
		if err != nil {
			serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, post)
	}
}

// CreatePostHandler godoc
// @Summary      Create post
// @Description  Create a post; the server assigns id = max(id)+1
// @Tags         posts
// @Accept       json
// @Produce      json
// @Param        post  body      dto.PostInput  true  "Post"
// @Success      201   {object}  dto.PostDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /posts [post]
func CreatePostHandler(svc *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in dto.PostInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid json: " + err.Error()})
			return
		}
		post, err := svc.Create(c.Request.Context(), in)
		if errors.Is(err, services.ErrInvalidPost) {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
			return
		}
		if err != nil {
			serverError(c, err)
			return
		}
		c.JSON(http.StatusCreated, post)
	}
}

// UpdatePostHandler godoc
// @Summary      Replace post
// @Tags         posts
// @Accept       json
// @Produce      json
// @Param        id    path      int            true  "Post id"
// @Param        post  body      dto.PostInput  true  "Post"
// @Success      200   {object}  dto.PostDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /posts/{id} [put]
func UpdatePostHandler(svc *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var in dto.PostInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid json: " + err.Error()})
			return
		}
		post, err := svc.Update(c.Request.Context(), id, in)
		switch {
		case errors.Is(err, services.ErrInvalidPost):
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		case errors.Is(err, repositories.ErrPostNotFound):
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "not found"})
		case err != nil:
			serverError(c, err)
		default:
			c.JSON(http.StatusOK, post)
		}
	}
}

// DeletePostHandler godoc
// @Summary      Delete post
// @Tags         posts
// @Param        id   path  int  true  "Post id"
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /posts/{id} [delete]
func DeletePostHandler(svc *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		if err := svc.Delete(c.Request.Context(), id); err != nil {
			serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{})
	}
}

func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid id"})
		return 0, false
	}
	return id, true
}

func serverError(c *gin.Context, err error) {
	logger.ErrorWithFields("posts handler failed", logger.Fields{
		"path":  c.Request.URL.Path,
		"error": err.Error(),
	})
	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
}
