package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"todotrack/internal/model"
	"todotrack/internal/repository"
)

type TagHandler struct {
	tagRepo *repository.TagRepository
	logs    ActivityLogger
}

func NewTagHandler(tagRepo *repository.TagRepository, logs ActivityLogger) *TagHandler {
	return &TagHandler{tagRepo: tagRepo, logs: logs}
}

type CreateTagRequest struct {
	Name string `json:"name" binding:"required,min=1,max=50"`
}

type UpdateTagRequest struct {
	Name string `json:"name" binding:"required,min=1,max=50"`
}

// List returns all of the user's tags with usage counts
// @Summary      List tags
// @Tags         Tags
// @Security     BearerAuth
// @Produce      json
// @Success      200 {array} repository.TagWithUsage
// @Router       /api/tags [get]
func (h *TagHandler) List(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	tags, err := h.tagRepo.List(c.Request.Context(), userID)
	if err != nil {
		handleRepoError(c, h.logs, userID, "list_tags", err)
		return
	}

	respondData(c, http.StatusOK, tags)
}

// GetByID returns one tag with its usage count
// @Summary      Get a tag
// @Tags         Tags
// @Security     BearerAuth
// @Produce      json
// @Param        id path string true "Tag ID"
// @Success      200 {object} repository.TagWithUsage
// @Failure      404 {object} map[string]any
// @Router       /api/tags/{id} [get]
func (h *TagHandler) GetByID(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid tag ID", "validation")
		return
	}

	tag, err := h.tagRepo.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		handleRepoError(c, h.logs, userID, "get_tag", err)
		return
	}

	respondData(c, http.StatusOK, tag)
}

// GetByName looks a tag up by its per-owner name
// @Summary      Get a tag by name
// @Tags         Tags
// @Security     BearerAuth
// @Produce      json
// @Param        name path string true "Tag name"
// @Success      200 {object} repository.TagWithUsage
// @Failure      404 {object} map[string]any
// @Router       /api/tags/name/{name} [get]
func (h *TagHandler) GetByName(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	name := strings.TrimSpace(c.Param("name"))
	if name == "" {
		respondError(c, http.StatusBadRequest, "Tag name is required", "validation")
		return
	}

	tag, err := h.tagRepo.GetByName(c.Request.Context(), userID, name)
	if err != nil {
		handleRepoError(c, h.logs, userID, "get_tag_by_name", err)
		return
	}
	if tag == nil {
		respondError(c, http.StatusNotFound, "Tag not found", "not_found")
		return
	}

	respondData(c, http.StatusOK, tag)
}

// Create adds a tag. Duplicate names per user come back as 409.
// @Summary      Create a tag
// @Tags         Tags
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body CreateTagRequest true "Tag name"
// @Success      201 {object} model.Tag
// @Failure      409 {object} map[string]any
// @Router       /api/tags [post]
func (h *TagHandler) Create(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	var req CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Tag name is required (1-50 characters)", "validation")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		respondError(c, http.StatusBadRequest, "Tag name is required (1-50 characters)", "validation")
		return
	}

	tag := &model.Tag{
		ID:     uuid.New(),
		UserID: userID,
		Name:   name,
	}
	if err := h.tagRepo.Create(c.Request.Context(), tag); err != nil {
		handleRepoError(c, h.logs, userID, "create_tag", err)
		return
	}

	h.logs.Record(c.Request.Context(), userID, model.ActionTagCreate, model.LogDetails{
		"tag_id": tag.ID.String(),
		"name":   tag.Name,
	})

	respondData(c, http.StatusCreated, tag)
}

// Update renames a tag
// @Summary      Rename a tag
// @Tags         Tags
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id path string true "Tag ID"
// @Param        request body UpdateTagRequest true "New name"
// @Success      200 {object} model.Tag
// @Failure      404 {object} map[string]any
// @Failure      409 {object} map[string]any
// @Router       /api/tags/{id} [put]
func (h *TagHandler) Update(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid tag ID", "validation")
		return
	}

	var req UpdateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Tag name is required (1-50 characters)", "validation")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		respondError(c, http.StatusBadRequest, "Tag name is required (1-50 characters)", "validation")
		return
	}

	tag, err := h.tagRepo.UpdateName(c.Request.Context(), userID, id, name)
	if err != nil {
		handleRepoError(c, h.logs, userID, "update_tag", err)
		return
	}

	h.logs.Record(c.Request.Context(), userID, model.ActionTagUpdate, model.LogDetails{
		"tag_id": tag.ID.String(),
		"name":   tag.Name,
	})

	respondData(c, http.StatusOK, tag)
}

// Delete removes a tag and all its todo associations
// @Summary      Delete a tag
// @Tags         Tags
// @Security     BearerAuth
// @Produce      json
// @Param        id path string true "Tag ID"
// @Success      200 {object} model.Tag
// @Failure      404 {object} map[string]any
// @Router       /api/tags/{id} [delete]
func (h *TagHandler) Delete(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid tag ID", "validation")
		return
	}

	tag, err := h.tagRepo.Delete(c.Request.Context(), userID, id)
	if err != nil {
		handleRepoError(c, h.logs, userID, "delete_tag", err)
		return
	}

	h.logs.Record(c.Request.Context(), userID, model.ActionTagDelete, model.LogDetails{
		"tag_id": tag.ID.String(),
		"name":   tag.Name,
	})

	respondData(c, http.StatusOK, tag)
}

// Popular lists the most used tags, usage above zero only
// @Summary      Popular tags
// @Tags         Tags
// @Security     BearerAuth
// @Produce      json
// @Param        limit query int false "Max rows (default 10)"
// @Success      200 {array} repository.TagWithUsage
// @Router       /api/tags/popular [get]
func (h *TagHandler) Popular(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		limit = 10
	}

	tags, err := h.tagRepo.Popular(c.Request.Context(), userID, limit)
	if err != nil {
		handleRepoError(c, h.logs, userID, "popular_tags", err)
		return
	}

	respondData(c, http.StatusOK, tags)
}

// Stats summarises the user's tags
// @Summary      Tag stats
// @Tags         Tags
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} repository.TagStats
// @Router       /api/tags/stats [get]
func (h *TagHandler) Stats(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	stats, err := h.tagRepo.Stats(c.Request.Context(), userID)
	if err != nil {
		handleRepoError(c, h.logs, userID, "tag_stats", err)
		return
	}

	respondData(c, http.StatusOK, stats)
}

// TodosByTag lists the todos carrying a given tag
// @Summary      Todos for a tag
// @Tags         Tags
// @Security     BearerAuth
// @Produce      json
// @Param        id path string true "Tag ID"
// @Success      200 {array} TodoResponse
// @Failure      404 {object} map[string]any
// @Router       /api/tags/{id}/todos [get]
func (h *TagHandler) TodosByTag(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid tag ID", "validation")
		return
	}

	todos, err := h.tagRepo.TodosByTag(c.Request.Context(), userID, id)
	if err != nil {
		handleRepoError(c, h.logs, userID, "todos_by_tag", err)
		return
	}

	respondData(c, http.StatusOK, toTodoResponses(todos))
}
