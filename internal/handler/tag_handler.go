package handler

import (
	"net/http"

	"github.com/Morfeas98/GameCollectionApp/internal/models"

	"github.com/gin-gonic/gin"
)

type TagInput struct {
	Name        string `json:"name" binding:"required" example:"RPG"`
	Description string `json:"description"`
}

type TagResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func newTagResponse(tag models.Tag) TagResponse {
	return TagResponse{
		ID:          tag.ID,
		Name:        tag.Name,
		Description: tag.Description,
	}
}

const tagKindKey = "tagKind"

// tagRoutes maps the URL segment of each tag collection to its kind.
var tagRoutes = map[string]models.TagKind{
	"platforms":  models.TagPlatform,
	"genres":     models.TagGenre,
	"franchises": models.TagFranchise,
}

// withTagKind fixes the tag kind served by a route group.
func withTagKind(kind models.TagKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(tagKindKey, kind)
		c.Next()
	}
}

func tagKind(c *gin.Context) (models.TagKind, bool) {
	if v, ok := c.Get(tagKindKey); ok {
		if kind, ok := v.(models.TagKind); ok {
			return kind, true
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "Unknown tag type"})
	return "", false
}

// CreateTag godoc
// @Summary      Create a platform, genre or franchise
// @Tags         admin-tags
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        kind  path string   true "platforms, genres or franchises"
// @Param        input body TagInput true "Tag Info"
// @Success      201  {object}  TagResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse "Name already taken"
// @Router       /admin/{kind} [post]
func (h *Handler) CreateTag(c *gin.Context) {
	kind, ok := tagKind(c)
	if !ok {
		return
	}
	var input TagInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tag, err := h.catalog.CreateTag(c.Request.Context(), kind, input.Name, input.Description)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newTagResponse(*tag))
}

// GetTags godoc
// @Summary      List platforms, genres or franchises
// @Tags         tags
// @Produce      json
// @Param        kind path string true "platforms, genres or franchises"
// @Success      200 {array} TagResponse
// @Router       /{kind} [get]
func (h *Handler) GetTags(c *gin.Context) {
	kind, ok := tagKind(c)
	if !ok {
		return
	}
	tags, err := h.catalog.ListTags(c.Request.Context(), kind)
	if err != nil {
		respondError(c, err)
		return
	}

	res := make([]TagResponse, 0, len(tags))
	for _, t := range tags {
		res = append(res, newTagResponse(t))
	}
	c.JSON(http.StatusOK, res)
}

// DeleteTag godoc
// @Summary      Delete a platform, genre or franchise
// @Description  Soft-deletes the tag and detaches it from every game.
// @Tags         admin-tags
// @Produce      json
// @Security     BearerAuth
// @Param        kind path string true "platforms, genres or franchises"
// @Param        id   path int    true "Tag ID"
// @Success      200 {object} map[string]string "{"message": "Tag deleted"}"
// @Failure      404 {object} ErrorResponse "Tag not found"
// @Router       /admin/{kind}/{id} [delete]
func (h *Handler) DeleteTag(c *gin.Context) {
	kind, ok := tagKind(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.catalog.DeleteTag(c.Request.Context(), kind, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Tag deleted"})
}
