package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Activity log actions. The values land in the logs table, so renaming one
// breaks historical queries.
const (
	ActionUserRegister      = "user_register"
	ActionUserLogin         = "user_login"
	ActionUserUpdateProfile = "user_update_profile"
	ActionUserExportData    = "user_export_data"
	ActionUserImportData    = "user_import_data"

	ActionPasswordChange       = "password_change"
	ActionPasswordChangeFailed = "password_change_failed"

	ActionTodoCreate     = "todo_create"
	ActionTodoUpdate     = "todo_update"
	ActionTodoDelete     = "todo_delete"
	ActionTodoComplete   = "todo_complete"
	ActionTodoUncomplete = "todo_uncomplete"

	ActionTagCreate   = "tag_create"
	ActionTagUpdate   = "tag_update"
	ActionTagDelete   = "tag_delete"
	ActionTagAssign   = "tag_assign"
	ActionTagUnassign = "tag_unassign"
	ActionTagsReplace = "tags_replace"

	ActionSystemError   = "system_error"
	ActionViewDashboard = "view_dashboard"
)

// KnownActions lists every action a client may append through the logs API.
var KnownActions = []string{
	ActionUserRegister, ActionUserLogin, ActionUserUpdateProfile,
	ActionUserExportData, ActionUserImportData,
	ActionPasswordChange, ActionPasswordChangeFailed,
	ActionTodoCreate, ActionTodoUpdate, ActionTodoDelete,
	ActionTodoComplete, ActionTodoUncomplete,
	ActionTagCreate, ActionTagUpdate, ActionTagDelete,
	ActionTagAssign, ActionTagUnassign, ActionTagsReplace,
	ActionSystemError, ActionViewDashboard,
}

// KnownAction reports whether action is one of the predefined constants.
func KnownAction(action string) bool {
	for _, a := range KnownActions {
		if a == action {
			return true
		}
	}
	return false
}

// LogDetails is a free-form JSON payload stored in a jsonb column.
type LogDetails map[string]any

func (d LogDetails) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	return json.Marshal(d)
}

func (d *LogDetails) Scan(value any) error {
	if value == nil {
		*d = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("unsupported type for LogDetails")
	}
	return json.Unmarshal(raw, d)
}

// Log is an append-only audit record. UserID is nullable so system-level
// failures without a resolved user can still be recorded.
type Log struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	UserID    *uuid.UUID `gorm:"type:uuid;index"`
	Action    string     `gorm:"not null;index"`
	Details   LogDetails `gorm:"type:jsonb"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
}
