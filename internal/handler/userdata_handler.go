package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"todotrack/internal/model"
	"todotrack/internal/repository"
)

type UserDataHandler struct {
	userDataRepo *repository.UserDataRepository
	logs         ActivityLogger
}

func NewUserDataHandler(userDataRepo *repository.UserDataRepository, logs ActivityLogger) *UserDataHandler {
	return &UserDataHandler{userDataRepo: userDataRepo, logs: logs}
}

type ImportRequest struct {
	Tags  []string                `json:"tags"`
	Todos []repository.ImportTodo `json:"todos"`
}

// Export returns the caller's full data snapshot as JSON
// @Summary      Export user data
// @Tags         UserData
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} repository.UserExport
// @Router       /api/user-data/export [get]
func (h *UserDataHandler) Export(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	export, err := h.userDataRepo.Export(c.Request.Context(), userID)
	if err != nil {
		handleRepoError(c, h.logs, userID, "export_data", err)
		return
	}

	h.logs.Record(c.Request.Context(), userID, model.ActionUserExportData, model.LogDetails{
		"todos": export.Stats.TotalTodos,
		"tags":  export.Stats.TotalTags,
	})

	respondData(c, http.StatusOK, export)
}

// Import restores a snapshot. The whole restore is one transaction, so a
// malformed entry leaves the account untouched.
// @Summary      Import user data
// @Tags         UserData
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body ImportRequest true "Snapshot to restore"
// @Success      200 {object} repository.ImportSummary
// @Router       /api/user-data/import [post]
func (h *UserDataHandler) Import(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid import payload", "validation")
		return
	}
	if len(req.Todos) == 0 && len(req.Tags) == 0 {
		respondError(c, http.StatusBadRequest, "Nothing to import", "validation")
		return
	}
	for _, todo := range req.Todos {
		if todo.Text == "" {
			respondError(c, http.StatusBadRequest, "Every todo needs text", "validation")
			return
		}
		if !model.ValidPriority(todo.Priority) {
			respondError(c, http.StatusBadRequest, "Priority must be 0, 1 or 2", "validation")
			return
		}
		if todo.DueDate != nil {
			if _, err := time.Parse(dateLayout, *todo.DueDate); err != nil {
				respondError(c, http.StatusBadRequest, "Due date must be YYYY-MM-DD", "validation")
				return
			}
		}
	}

	summary, err := h.userDataRepo.Import(c.Request.Context(), userID, req.Tags, req.Todos)
	if err != nil {
		handleRepoError(c, h.logs, userID, "import_data", err)
		return
	}

	h.logs.Record(c.Request.Context(), userID, model.ActionUserImportData, model.LogDetails{
		"todos_imported": summary.TodosImported,
		"tags_imported":  summary.TagsImported,
	})

	respondDataMessage(c, http.StatusOK, summary, "Import completed")
}
