package models

import "time"

// Task workflow values.
const (
	TaskStatusNew        = "new"
	TaskStatusInProgress = "in-progress"
	TaskStatusCompleted  = "completed"
	TaskStatusCancelled  = "cancelled"
)

var (
	TaskStatuses   = []string{TaskStatusNew, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled}
	TaskPriorities = []string{"low", "medium", "high", "urgent"}
)

// Task represents a unit of work performed for exactly one client.
type Task struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ClientID uint   `gorm:"not null;index" json:"client_id"`
	Client   Client `gorm:"foreignKey:ClientID" json:"-"`

	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description,omitempty"`

	Status   string `gorm:"size:20;default:new;index" json:"status"`
	Priority string `gorm:"size:20;default:medium" json:"priority"`

	DueDate *time.Time `json:"due_date,omitempty"`
	// CompletedAt records when the task was last completed. It is set on the
	// first transition to "completed" and survives a reopen.
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	AssignedTo string `gorm:"size:255" json:"assigned_to,omitempty"`
	Category   string `gorm:"size:100" json:"category,omitempty"`
	Recurrence string `gorm:"size:50" json:"recurrence,omitempty"`

	// Effort tracking. nil means "not recorded", persisted as SQL NULL.
	EstimatedHours *float64 `json:"estimated_hours,omitempty"`
	ActualHours    *float64 `json:"actual_hours,omitempty"`
	Price          *float64 `json:"price,omitempty"`

	// Processing checklist.
	DocsChecked *bool `gorm:"column:docs_checked" json:"docs_checked,omitempty"`
	FctChecked  *bool `gorm:"column:fct_checked" json:"fct_checked,omitempty"`
	PrepChecked *bool `gorm:"column:prep_checked" json:"prep_checked,omitempty"`
	ScanChecked *bool `gorm:"column:scan_checked" json:"scan_checked,omitempty"`
	ProcChecked *bool `gorm:"column:proc_checked" json:"proc_checked,omitempty"`
	SendChecked *bool `gorm:"column:send_checked" json:"send_checked,omitempty"`
	ArchChecked *bool `gorm:"column:arch_checked" json:"arch_checked,omitempty"`
	PaidChecked *bool `gorm:"column:paid_checked" json:"paid_checked,omitempty"`

	// Deprecated: legacy duplicates of the checklist columns above, written by
	// an earlier schema revision. No reconciliation with the canonical columns
	// is defined; they are carried untouched and never read.
	LegacyDocChecked  *bool `gorm:"column:doc_checked" json:"doc_checked,omitempty"`
	LegacyDocsChecked *bool `gorm:"column:docschecked" json:"docschecked,omitempty"`
	LegacyFctChecked  *bool `gorm:"column:fctchecked" json:"fctchecked,omitempty"`
	LegacyPrepChecked *bool `gorm:"column:prepchecked" json:"prepchecked,omitempty"`
	LegacyScanChecked *bool `gorm:"column:scanchecked" json:"scanchecked,omitempty"`
	LegacyProcChecked *bool `gorm:"column:procchecked" json:"procchecked,omitempty"`
	LegacySendChecked *bool `gorm:"column:sendchecked" json:"sendchecked,omitempty"`
	LegacyArchChecked *bool `gorm:"column:archchecked" json:"archchecked,omitempty"`
	LegacyPaidChecked *bool `gorm:"column:paidchecked" json:"paidchecked,omitempty"`
}

// StatusOrDefault returns the effective status, treating the empty string as "new".
func (t *Task) StatusOrDefault() string {
	if t.Status == "" {
		return TaskStatusNew
	}
	return t.Status
}

// PriorityOrDefault returns the effective priority, treating the empty string as "medium".
func (t *Task) PriorityOrDefault() string {
	if t.Priority == "" {
		return "medium"
	}
	return t.Priority
}

// IsCompleted reports whether the task is in the completed status.
func (t *Task) IsCompleted() bool { return t.Status == TaskStatusCompleted }

// Variance returns actual minus estimated hours, or nil when either side is
// not recorded.
func (t *Task) Variance() *float64 {
	if t.EstimatedHours == nil || t.ActualHours == nil {
		return nil
	}
	v := *t.ActualHours - *t.EstimatedHours
	return &v
}
