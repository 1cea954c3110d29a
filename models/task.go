package models

import "time"

// Task status values.
const (
	StatusTodo       = "TODO"
	StatusInProgress = "IN_PROGRESS"
	StatusDone       = "DONE"
)

// Task priority values.
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
)

// Task is the aggregate root of the task service. User and team IDs come
// from the other services and are stored as opaque integers.
//
// Deleting a task deliberately leaves its comments and files in place; only
// comment deletion cascades (to the comment's files). The Comment and file
// rows therefore carry no foreign-key constraint back to tasks.
type Task struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Title            string    `gorm:"not null;size:255" json:"title"`
	Description      string    `gorm:"not null" json:"description"`
	CreatedByUserID  uint      `gorm:"not null;index" json:"created_by_user_id"`
	AssignedToUserID uint      `gorm:"not null;index" json:"assigned_to_user_id"`
	Status           string    `gorm:"not null;index;default:'TODO'" json:"status"`
	DueDate          time.Time `gorm:"not null" json:"due_date"`
	Priority         string    `gorm:"not null;default:'MEDIUM'" json:"priority"`
	TeamID           uint      `gorm:"not null;index" json:"team_id"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Comment is a note on a task. Owns zero or more CommentFile rows.
type Comment struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Text            string    `gorm:"not null" json:"text"`
	CreatedByUserID uint      `gorm:"not null;index" json:"created_by_user_id"`
	TaskID          uint      `gorm:"not null;index" json:"task_id"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TaskFile is an attachment on a task. File is the stored content's path
// relative to the media root.
type TaskFile struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	File             string    `gorm:"not null" json:"file"`
	TaskID           uint      `gorm:"not null;index" json:"task_id"`
	UploadedByUserID uint      `gorm:"not null;index" json:"uploaded_by_user_id"`
	UploadedAt       time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
}

// CommentFile is an attachment on a comment.
type CommentFile struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	File             string    `gorm:"not null" json:"file"`
	CommentID        uint      `gorm:"not null;index" json:"comment_id"`
	UploadedByUserID uint      `gorm:"not null;index" json:"uploaded_by_user_id"`
	UploadedAt       time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
}

// ValidStatus reports whether s is one of the three task statuses. Any
// status may follow any other; there is no forward-only workflow.
func ValidStatus(s string) bool {
	return s == StatusTodo || s == StatusInProgress || s == StatusDone
}

// ValidPriority reports whether s is a known priority.
func ValidPriority(s string) bool {
	return s == PriorityLow || s == PriorityMedium || s == PriorityHigh
}
