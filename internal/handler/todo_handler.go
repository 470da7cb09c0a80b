package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"todotrack/internal/model"
	"todotrack/internal/repository"
)

const dateLayout = "2006-01-02"

type TodoHandler struct {
	todoRepo *repository.TodoRepository
	logs     ActivityLogger
}

func NewTodoHandler(todoRepo *repository.TodoRepository, logs ActivityLogger) *TodoHandler {
	return &TodoHandler{todoRepo: todoRepo, logs: logs}
}

type CreateTodoRequest struct {
	Text     string   `json:"text" binding:"required"`
	Priority *int     `json:"priority"`
	DueDate  *string  `json:"due_date"`
	Tags     []string `json:"tags"`
}

type UpdateTodoRequest struct {
	Text        *string `json:"text"`
	Priority    *int    `json:"priority"`
	DueDate     *string `json:"due_date"`
	IsCompleted *bool   `json:"is_completed"`
}

// TagRef is the compact tag shape embedded in todo responses
type TagRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type TodoResponse struct {
	ID          string   `json:"id"`
	Text        string   `json:"text"`
	Priority    int      `json:"priority"`
	DueDate     *string  `json:"due_date"`
	IsCompleted bool     `json:"is_completed"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
	Tags        []TagRef `json:"tags"`
}

func toTodoResponse(todo *model.Todo) TodoResponse {
	// Tags must serialize as [] rather than null for untagged todos
	tags := make([]TagRef, 0, len(todo.Tags))
	for _, tag := range todo.Tags {
		tags = append(tags, TagRef{ID: tag.ID.String(), Name: tag.Name})
	}

	var dueDate *string
	if todo.DueDate != nil {
		formatted := todo.DueDate.Format(dateLayout)
		dueDate = &formatted
	}

	return TodoResponse{
		ID:          todo.ID.String(),
		Text:        todo.Text,
		Priority:    todo.Priority,
		DueDate:     dueDate,
		IsCompleted: todo.IsCompleted,
		CreatedAt:   todo.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   todo.UpdatedAt.UTC().Format(time.RFC3339),
		Tags:        tags,
	}
}

func toTodoResponses(todos []model.Todo) []TodoResponse {
	responses := make([]TodoResponse, 0, len(todos))
	for i := range todos {
		responses = append(responses, toTodoResponse(&todos[i]))
	}
	return responses
}

func parseDueDate(s string) (*time.Time, bool) {
	parsed, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, false
	}
	return &parsed, true
}

// List returns the user's todos with tags, filtered by query params
// @Summary      List todos
// @Tags         Todos
// @Security     BearerAuth
// @Produce      json
// @Param        is_completed query bool false "Completion filter"
// @Param        priority query int false "Priority filter (0-2)"
// @Param        due_date query string false "Exact due date (YYYY-MM-DD)"
// @Param        overdue query bool false "Only overdue todos"
// @Param        search query string false "Substring match on text"
// @Param        limit query int false "Page size"
// @Param        offset query int false "Page offset"
// @Success      200 {array} TodoResponse
// @Router       /api/todos [get]
func (h *TodoHandler) List(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	filters, ok := parseTodoFilters(c)
	if !ok {
		return
	}

	todos, err := h.todoRepo.List(c.Request.Context(), userID, filters)
	if err != nil {
		handleRepoError(c, h.logs, userID, "list_todos", err)
		return
	}

	respondData(c, http.StatusOK, toTodoResponses(todos))
}

// GetByID returns one todo
// @Summary      Get a todo
// @Tags         Todos
// @Security     BearerAuth
// @Produce      json
// @Param        id path string true "Todo ID"
// @Success      200 {object} TodoResponse
// @Failure      404 {object} map[string]any
// @Router       /api/todos/{id} [get]
func (h *TodoHandler) GetByID(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid todo ID", "validation")
		return
	}

	todo, err := h.todoRepo.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		handleRepoError(c, h.logs, userID, "get_todo", err)
		return
	}

	respondData(c, http.StatusOK, toTodoResponse(todo))
}

// Create adds a todo, optionally linking tags in the same transaction
// @Summary      Create a todo
// @Tags         Todos
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body CreateTodoRequest true "Todo fields"
// @Success      201 {object} TodoResponse
// @Router       /api/todos [post]
func (h *TodoHandler) Create(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	var req CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid input", "validation")
		return
	}

	priority := model.PriorityLow
	if req.Priority != nil {
		if !model.ValidPriority(*req.Priority) {
			respondError(c, http.StatusBadRequest, "Priority must be 0, 1 or 2", "validation")
			return
		}
		priority = *req.Priority
	}

	var dueDate *time.Time
	if req.DueDate != nil {
		parsed, ok := parseDueDate(*req.DueDate)
		if !ok {
			respondError(c, http.StatusBadRequest, "Due date must be YYYY-MM-DD", "validation")
			return
		}
		dueDate = parsed
	}

	tagIDs := make([]uuid.UUID, 0, len(req.Tags))
	for _, raw := range req.Tags {
		tagID, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid tag ID", "validation")
			return
		}
		tagIDs = append(tagIDs, tagID)
	}

	todo := &model.Todo{
		ID:       uuid.New(),
		UserID:   userID,
		Text:     req.Text,
		Priority: priority,
		DueDate:  dueDate,
	}

	if err := h.todoRepo.Create(c.Request.Context(), todo, tagIDs); err != nil {
		handleRepoError(c, h.logs, userID, "create_todo", err)
		return
	}

	h.logs.Record(c.Request.Context(), userID, model.ActionTodoCreate, model.LogDetails{
		"todo_id":  todo.ID.String(),
		"text":     todo.Text,
		"priority": todo.Priority,
	})

	created, err := h.todoRepo.GetByID(c.Request.Context(), userID, todo.ID)
	if err != nil {
		handleRepoError(c, h.logs, userID, "create_todo", err)
		return
	}

	respondData(c, http.StatusCreated, toTodoResponse(created))
}

// Update applies a whitelisted partial update
// @Summary      Update a todo
// @Tags         Todos
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id path string true "Todo ID"
// @Param        request body UpdateTodoRequest true "Fields to change"
// @Success      200 {object} TodoResponse
// @Failure      404 {object} map[string]any
// @Router       /api/todos/{id} [put]
func (h *TodoHandler) Update(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid todo ID", "validation")
		return
	}

	var req UpdateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid input", "validation")
		return
	}

	updates := map[string]any{}
	if req.Text != nil {
		if *req.Text == "" {
			respondError(c, http.StatusBadRequest, "Text cannot be empty", "validation")
			return
		}
		updates["text"] = *req.Text
	}
	if req.Priority != nil {
		if !model.ValidPriority(*req.Priority) {
			respondError(c, http.StatusBadRequest, "Priority must be 0, 1 or 2", "validation")
			return
		}
		updates["priority"] = *req.Priority
	}
	if req.DueDate != nil {
		parsed, ok := parseDueDate(*req.DueDate)
		if !ok {
			respondError(c, http.StatusBadRequest, "Due date must be YYYY-MM-DD", "validation")
			return
		}
		updates["due_date"] = *parsed
	}
	if req.IsCompleted != nil {
		updates["is_completed"] = *req.IsCompleted
	}

	before, err := h.todoRepo.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		handleRepoError(c, h.logs, userID, "update_todo", err)
		return
	}

	todo, err := h.todoRepo.Update(c.Request.Context(), userID, id, updates)
	if err != nil {
		handleRepoError(c, h.logs, userID, "update_todo", err)
		return
	}

	action := model.ActionTodoUpdate
	if req.IsCompleted != nil {
		if *req.IsCompleted {
			action = model.ActionTodoComplete
		} else {
			action = model.ActionTodoUncomplete
		}
	}
	h.logs.Record(c.Request.Context(), userID, action, model.LogDetails{
		"todo_id": id.String(),
		"old_values": model.LogDetails{
			"text":         before.Text,
			"priority":     before.Priority,
			"is_completed": before.IsCompleted,
		},
		"new_values": updates,
	})

	respondData(c, http.StatusOK, toTodoResponse(todo))
}

// Delete removes a todo and its tag associations
// @Summary      Delete a todo
// @Tags         Todos
// @Security     BearerAuth
// @Produce      json
// @Param        id path string true "Todo ID"
// @Success      200 {object} TodoResponse
// @Failure      404 {object} map[string]any
// @Router       /api/todos/{id} [delete]
func (h *TodoHandler) Delete(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid todo ID", "validation")
		return
	}

	todo, err := h.todoRepo.Delete(c.Request.Context(), userID, id)
	if err != nil {
		handleRepoError(c, h.logs, userID, "delete_todo", err)
		return
	}

	h.logs.Record(c.Request.Context(), userID, model.ActionTodoDelete, model.LogDetails{
		"todo_id": id.String(),
		"text":    todo.Text,
	})

	respondData(c, http.StatusOK, toTodoResponse(todo))
}

// Toggle flips the completion flag
// @Summary      Toggle completion
// @Tags         Todos
// @Security     BearerAuth
// @Produce      json
// @Param        id path string true "Todo ID"
// @Success      200 {object} TodoResponse
// @Failure      404 {object} map[string]any
// @Router       /api/todos/{id}/toggle [patch]
func (h *TodoHandler) Toggle(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid todo ID", "validation")
		return
	}

	todo, err := h.todoRepo.ToggleComplete(c.Request.Context(), userID, id)
	if err != nil {
		handleRepoError(c, h.logs, userID, "toggle_todo", err)
		return
	}

	action := model.ActionTodoUncomplete
	if todo.IsCompleted {
		action = model.ActionTodoComplete
	}
	h.logs.Record(c.Request.Context(), userID, action, model.LogDetails{
		"todo_id":      id.String(),
		"is_completed": todo.IsCompleted,
	})

	respondData(c, http.StatusOK, toTodoResponse(todo))
}

// Stats reports headline counts for the user's todos
// @Summary      Todo counts
// @Tags         Todos
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} map[string]any
// @Router       /api/todos/stats [get]
func (h *TodoHandler) Stats(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	total, err := h.todoRepo.Count(ctx, userID, repository.TodoFilters{})
	if err != nil {
		handleRepoError(c, h.logs, userID, "todo_stats", err)
		return
	}
	completed := true
	completedCount, err := h.todoRepo.Count(ctx, userID, repository.TodoFilters{Completed: &completed})
	if err != nil {
		handleRepoError(c, h.logs, userID, "todo_stats", err)
		return
	}
	overdueCount, err := h.todoRepo.Count(ctx, userID, repository.TodoFilters{Overdue: true})
	if err != nil {
		handleRepoError(c, h.logs, userID, "todo_stats", err)
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"total":     total,
		"completed": completedCount,
		"pending":   total - completedCount,
		"overdue":   overdueCount,
	})
}

func parseTodoFilters(c *gin.Context) (repository.TodoFilters, bool) {
	var filters repository.TodoFilters

	if raw, exists := c.GetQuery("is_completed"); exists {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "is_completed must be a boolean", "validation")
			return filters, false
		}
		filters.Completed = &value
	}
	if raw, exists := c.GetQuery("priority"); exists {
		value, err := strconv.Atoi(raw)
		if err != nil || !model.ValidPriority(value) {
			respondError(c, http.StatusBadRequest, "priority must be 0, 1 or 2", "validation")
			return filters, false
		}
		filters.Priority = &value
	}
	if raw, exists := c.GetQuery("due_date"); exists {
		parsed, ok := parseDueDate(raw)
		if !ok {
			respondError(c, http.StatusBadRequest, "due_date must be YYYY-MM-DD", "validation")
			return filters, false
		}
		filters.DueDate = parsed
	}
	if raw, exists := c.GetQuery("overdue"); exists {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "overdue must be a boolean", "validation")
			return filters, false
		}
		filters.Overdue = value
	}
	filters.Search = c.Query("search")
	filters.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "0"))
	filters.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	return filters, true
}
