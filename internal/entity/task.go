package entity

// TaskStatus is the lifecycle state of a single domain task.
type TaskStatus string

const (
	TaskPending TaskStatus = "pending"
	TaskRunning TaskStatus = "running"
	TaskSuccess TaskStatus = "success"
	TaskFailed  TaskStatus = "failed"
	TaskSkipped TaskStatus = "skipped"
)

// Terminal reports whether no further transitions are allowed for the status.
func (s TaskStatus) Terminal() bool {
	return s == TaskSuccess || s == TaskFailed || s == TaskSkipped
}

// DomainTask is one unit of work: a single company domain to process.
type DomainTask struct {
	Domain       string     `json:"domain"`
	Status       TaskStatus `json:"status"`
	AttemptCount int        `json:"attempt_count"`
	Error        string     `json:"error,omitempty"`
}
