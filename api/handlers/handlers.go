package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"blog-api/api/trace"
	"blog-api/dto"
	"blog-api/internal/logger"
	"blog-api/services"
	"blog-api/validation"
)

// ListPostsHandler godoc
// @Summary      List posts
// @Description  List posts newest first, optionally filtered by a title/author substring
// @Tags         blogs
// @Param        page    query  int     false  "Page number (1-based)"
// @Param        limit   query  int     false  "Page size"
// @Param        search  query  string  false  "Case-insensitive title/author substring"
// @Produce      json
// @Success      200  {array}   dto.PostDTO
// @Failure      500  {object}  dto.ErrorResponseDTO
// @Router       /blogs [get]
func ListPostsHandler(svc *services.PostService, defaultLimit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		in := services.ListPostsInput{
			Page:   positiveQuery(c, "page", 1),
			Limit:  positiveQuery(c, "limit", defaultLimit),
			Search: c.Query("search"),
		}
		posts, err := svc.List(c.Request.Context(), in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, posts)
	}
}

// CountPostsHandler godoc
// @Summary      Count posts
// @Description  Count posts matching the same search filter as the list endpoint
// @Tags         blogs
// @Param        search  query  string  false  "Case-insensitive title/author substring"
// @Produce      json
// @Success      200  {object}  dto.CountDTO
// @Failure      500  {object}  dto.ErrorResponseDTO
// @Router       /blogs/count [get]
func CountPostsHandler(svc *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := svc.Count(c.Request.Context(), c.Query("search"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.CountDTO{Count: n})
	}
}

// GetPostHandler godoc
// @Summary      Get post by id
// @Description  Get a single post by ObjectID
// @Tags         blogs
// @Param        id   path   string  true  "ObjectID"
// @Produce      json
// @Success      200  {object}  dto.PostDTO
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Router       /blogs/{id} [get]
func GetPostHandler(svc *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		post, err := svc.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, post)
	}
}

// GetPostBySlugHandler godoc
// @Summary      Get post by slug
// @Tags         blogs
// @Param        slug  path  string  true  "Post slug"
// @Produce      json
// @Success      200  {object}  dto.PostDTO
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Router       /blogs/slug/{slug} [get]
func GetPostBySlugHandler(svc *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		post, err := svc.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, post)
	}
}

// CreatePostHandler godoc
// @Summary      Create post
// @Description  Create a post; the slug is derived from the title when omitted
// @Tags         blogs
// @Accept       json
// @Param        post  body  dto.CreatePostRequest  true  "Post"
// @Produce      json
// @Success      200  {object}  dto.PostMessageDTO
// @Failure      400  {object}  dto.ErrorResponseDTO
// @Router       /blogs [post]
func CreatePostHandler(svc *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.CreatePostRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: "invalid request body"})
			return
		}
		post, err := svc.Create(c.Request.Context(), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.PostMessageDTO{Message: "Blog created successfully", Post: *post})
	}
}

// UpdatePostHandler godoc
// @Summary      Update post
// @Description  Partially update a post; changing the title regenerates the slug
// @Tags         blogs
// @Accept       json
// @Param        id    path  string                 true  "ObjectID"
// @Param        post  body  dto.UpdatePostRequest  true  "Fields to change"
// @Produce      json
// @Success      200  {object}  dto.PostMessageDTO
// @Failure      400  {object}  dto.ErrorResponseDTO
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Router       /blogs/{id} [put]
func UpdatePostHandler(svc *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.UpdatePostRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: "invalid request body"})
			return
		}
		post, err := svc.Update(c.Request.Context(), c.Param("id"), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.PostMessageDTO{Message: "Blog updated successfully", Post: *post})
	}
}

// DeletePostHandler godoc
// @Summary      Delete post
// @Tags         blogs
// @Param        id   path   string  true  "ObjectID"
// @Produce      json
// @Success      200  {object}  dto.MessageResponseDTO
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Router       /blogs/{id} [delete]
func DeletePostHandler(svc *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.MessageResponseDTO{Message: "Blog deleted successfully"})
	}
}

// positiveQuery reads an integer query parameter, falling back to def when
// it is missing, malformed or not positive.
func positiveQuery(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v < 1 {
		return def
	}
	return v
}

// respondError maps service errors onto status codes. Unexpected errors are
// logged in full and reported to the client generically.
func respondError(c *gin.Context, err error) {
	var verrs validation.Errors
	var conflict *services.ConflictError
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponseDTO{Error: "Blog not found"})
	case errors.As(err, &verrs):
		c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: verrs.Error(), Fields: verrs})
	case errors.As(err, &conflict):
		c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{
			Error: fmt.Sprintf("Blog with this %s already exists", conflict.Field),
		})
	default:
		logger.ErrorWithFields("request failed", logger.Fields{
			"request_id": trace.RequestIDFromContext(c.Request.Context()),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"error":      err.Error(),
		})
		c.JSON(http.StatusInternalServerError, dto.ErrorResponseDTO{Error: "Internal server error"})
	}
}
