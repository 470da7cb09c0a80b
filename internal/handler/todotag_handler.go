package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"todotrack/internal/model"
	"todotrack/internal/repository"
)

type TodoTagHandler struct {
	todoTagRepo *repository.TodoTagRepository
	logs        ActivityLogger
}

func NewTodoTagHandler(todoTagRepo *repository.TodoTagRepository, logs ActivityLogger) *TodoTagHandler {
	return &TodoTagHandler{todoTagRepo: todoTagRepo, logs: logs}
}

type AssociationRequest struct {
	TodoID string `json:"todo_id" binding:"required"`
	TagID  string `json:"tag_id" binding:"required"`
}

type BulkAssociationRequest struct {
	TodoID string   `json:"todo_id" binding:"required"`
	TagIDs []string `json:"tag_ids" binding:"required,min=1"`
}

type ReplaceTagsRequest struct {
	Tags []string `json:"tags"`
}

func (r *AssociationRequest) parse() (todoID, tagID uuid.UUID, err error) {
	todoID, err = uuid.Parse(r.TodoID)
	if err != nil {
		return
	}
	tagID, err = uuid.Parse(r.TagID)
	return
}

func parseUUIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Assign links a tag to a todo. Repeating the call is a no-op reported
// through the assigned flag.
// @Summary      Assign a tag to a todo
// @Tags         TodoTags
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body AssociationRequest true "Pair to link"
// @Success      200 {object} repository.AssignResult
// @Failure      404 {object} map[string]any
// @Router       /api/todo-tags [post]
func (h *TodoTagHandler) Assign(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	var req AssociationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "todo_id and tag_id are required", "validation")
		return
	}
	todoID, tagID, err := req.parse()
	if err != nil {
		respondError(c, http.StatusBadRequest, "todo_id and tag_id must be valid UUIDs", "validation")
		return
	}

	h.assign(c, userID, todoID, tagID)
}

// AssignByPath links via /api/tags/:id/assign/:todoId
func (h *TodoTagHandler) AssignByPath(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	tagID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid tag ID", "validation")
		return
	}
	todoID, err := uuid.Parse(c.Param("todoId"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid todo ID", "validation")
		return
	}

	h.assign(c, userID, todoID, tagID)
}

func (h *TodoTagHandler) assign(c *gin.Context, userID, todoID, tagID uuid.UUID) {
	result, err := h.todoTagRepo.Assign(c.Request.Context(), userID, todoID, tagID)
	if err != nil {
		handleRepoError(c, h.logs, userID, "assign_tag", err)
		return
	}

	if result.Assigned {
		h.logs.Record(c.Request.Context(), userID, model.ActionTagAssign, model.LogDetails{
			"todo_id":  todoID.String(),
			"tag_id":   tagID.String(),
			"tag_name": result.TagName,
		})
	}

	respondData(c, http.StatusOK, result)
}

// Remove unlinks a tag from a todo. Removing an absent pair succeeds
// with removed=false.
// @Summary      Remove a tag from a todo
// @Tags         TodoTags
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body AssociationRequest true "Pair to unlink"
// @Success      200 {object} repository.RemoveResult
// @Failure      404 {object} map[string]any
// @Router       /api/todo-tags [delete]
func (h *TodoTagHandler) Remove(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	var req AssociationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "todo_id and tag_id are required", "validation")
		return
	}
	todoID, tagID, err := req.parse()
	if err != nil {
		respondError(c, http.StatusBadRequest, "todo_id and tag_id must be valid UUIDs", "validation")
		return
	}

	h.remove(c, userID, todoID, tagID)
}

// RemoveByPath unlinks via /api/tags/:id/remove/:todoId
func (h *TodoTagHandler) RemoveByPath(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	tagID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid tag ID", "validation")
		return
	}
	todoID, err := uuid.Parse(c.Param("todoId"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid todo ID", "validation")
		return
	}

	h.remove(c, userID, todoID, tagID)
}

func (h *TodoTagHandler) remove(c *gin.Context, userID, todoID, tagID uuid.UUID) {
	result, err := h.todoTagRepo.Remove(c.Request.Context(), userID, todoID, tagID)
	if err != nil {
		handleRepoError(c, h.logs, userID, "remove_tag", err)
		return
	}

	if result.Removed {
		h.logs.Record(c.Request.Context(), userID, model.ActionTagUnassign, model.LogDetails{
			"todo_id":  todoID.String(),
			"tag_id":   tagID.String(),
			"tag_name": result.TagName,
		})
	}

	respondData(c, http.StatusOK, result)
}

// AssignBulk links several tags to one todo, reporting each outcome
// separately so one bad tag does not sink the rest
// @Summary      Bulk assign tags
// @Tags         TodoTags
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body BulkAssociationRequest true "Todo and tag IDs"
// @Success      200 {array} repository.BulkAssignItem
// @Failure      404 {object} map[string]any
// @Router       /api/todo-tags/bulk [post]
func (h *TodoTagHandler) AssignBulk(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	var req BulkAssociationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "todo_id and a non-empty tag_ids list are required", "validation")
		return
	}
	todoID, err := uuid.Parse(req.TodoID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "todo_id must be a valid UUID", "validation")
		return
	}
	tagIDs, err := parseUUIDs(req.TagIDs)
	if err != nil {
		respondError(c, http.StatusBadRequest, "tag_ids must be valid UUIDs", "validation")
		return
	}

	results, err := h.todoTagRepo.AssignBulk(c.Request.Context(), userID, todoID, tagIDs)
	if err != nil {
		handleRepoError(c, h.logs, userID, "bulk_assign_tags", err)
		return
	}

	h.logs.Record(c.Request.Context(), userID, model.ActionTagAssign, model.LogDetails{
		"todo_id": todoID.String(),
		"bulk":    true,
		"count":   len(results),
	})

	respondData(c, http.StatusOK, results)
}

// RemoveBulk unlinks several tags from one todo with per-item outcomes
// @Summary      Bulk remove tags
// @Tags         TodoTags
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body BulkAssociationRequest true "Todo and tag IDs"
// @Success      200 {array} repository.BulkRemoveItem
// @Failure      404 {object} map[string]any
// @Router       /api/todo-tags/bulk [delete]
func (h *TodoTagHandler) RemoveBulk(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	var req BulkAssociationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "todo_id and a non-empty tag_ids list are required", "validation")
		return
	}
	todoID, err := uuid.Parse(req.TodoID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "todo_id must be a valid UUID", "validation")
		return
	}
	tagIDs, err := parseUUIDs(req.TagIDs)
	if err != nil {
		respondError(c, http.StatusBadRequest, "tag_ids must be valid UUIDs", "validation")
		return
	}

	results, err := h.todoTagRepo.RemoveBulk(c.Request.Context(), userID, todoID, tagIDs)
	if err != nil {
		handleRepoError(c, h.logs, userID, "bulk_remove_tags", err)
		return
	}

	h.logs.Record(c.Request.Context(), userID, model.ActionTagUnassign, model.LogDetails{
		"todo_id": todoID.String(),
		"bulk":    true,
		"count":   len(results),
	})

	respondData(c, http.StatusOK, results)
}

// ReplaceAll swaps a todo's tag set atomically. Any unknown tag rolls
// the whole replacement back.
// @Summary      Replace a todo's tags
// @Tags         TodoTags
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        todoId path string true "Todo ID"
// @Param        request body ReplaceTagsRequest true "Replacement tag IDs"
// @Success      200 {object} map[string]any
// @Failure      404 {object} map[string]any
// @Router       /api/todo-tags/{todoId} [put]
func (h *TodoTagHandler) ReplaceAll(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	todoID, err := uuid.Parse(c.Param("todoId"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid todo ID", "validation")
		return
	}

	var req ReplaceTagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "tags must be a list of tag IDs", "validation")
		return
	}
	tagIDs, err := parseUUIDs(req.Tags)
	if err != nil {
		respondError(c, http.StatusBadRequest, "tags must be valid UUIDs", "validation")
		return
	}

	if err := h.todoTagRepo.ReplaceAll(c.Request.Context(), userID, todoID, tagIDs); err != nil {
		handleRepoError(c, h.logs, userID, "replace_tags", err)
		return
	}

	h.logs.Record(c.Request.Context(), userID, model.ActionTagsReplace, model.LogDetails{
		"todo_id": todoID.String(),
		"count":   len(tagIDs),
	})

	respondDataMessage(c, http.StatusOK, gin.H{
		"todo_id": todoID.String(),
		"count":   len(tagIDs),
	}, "Tags replaced")
}

// Stats summarises the user's todo-tag associations
// @Summary      Association stats
// @Tags         TodoTags
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} repository.AssociationStats
// @Router       /api/todo-tags/stats [get]
func (h *TodoTagHandler) Stats(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	stats, err := h.todoTagRepo.Stats(c.Request.Context(), userID)
	if err != nil {
		handleRepoError(c, h.logs, userID, "association_stats", err)
		return
	}

	respondData(c, http.StatusOK, stats)
}

// Relationships reports which tags appear together on the same todos
// @Summary      Tag co-occurrence
// @Tags         TodoTags
// @Security     BearerAuth
// @Produce      json
// @Param        limit query int false "Max pairs (default 10)"
// @Success      200 {array} repository.TagRelationship
// @Router       /api/todo-tags/relationships [get]
func (h *TodoTagHandler) Relationships(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		limit = 10
	}

	pairs, err := h.todoTagRepo.Relationships(c.Request.Context(), userID, limit)
	if err != nil {
		handleRepoError(c, h.logs, userID, "tag_relationships", err)
		return
	}

	respondData(c, http.StatusOK, pairs)
}
