package entity

import "time"

// DomainResult is the terminal outcome for one domain task, reported to the
// event sink exactly once and archived for export.
type DomainResult struct {
	Domain      string             `json:"domain"`
	Status      TaskStatus         `json:"status"`
	Contact     *ContactRecord     `json:"contact,omitempty"`
	Profiles    []ExecutiveProfile `json:"profiles,omitempty"`
	Error       string             `json:"error,omitempty"`
	CompletedAt time.Time          `json:"completed_at"`
}

// Session is one batch run over an ordered list of domain tasks. It is
// exclusively owned by the scheduler while active and persisted after every
// task transition so an interrupted run can resume.
type Session struct {
	ID        string                   `json:"session_id"`
	CreatedAt time.Time                `json:"created_at"`
	Paused    bool                     `json:"paused"`
	Tasks     []DomainTask             `json:"tasks"`
	Results   map[string]*DomainResult `json:"results"`
}

// NewSession builds a session with one pending task per input domain,
// preserving input order.
func NewSession(id string, domains []string) *Session {
	tasks := make([]DomainTask, 0, len(domains))
	for _, d := range domains {
		tasks = append(tasks, DomainTask{Domain: d, Status: TaskPending})
	}
	return &Session{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		Tasks:     tasks,
		Results:   map[string]*DomainResult{},
	}
}

// CompletedCount returns the number of tasks in a terminal state.
func (s *Session) CompletedCount() int {
	n := 0
	for i := range s.Tasks {
		if s.Tasks[i].Status.Terminal() {
			n++
		}
	}
	return n
}

// SuccessCount returns the number of tasks that finished successfully.
func (s *Session) SuccessCount() int {
	n := 0
	for i := range s.Tasks {
		if s.Tasks[i].Status == TaskSuccess {
			n++
		}
	}
	return n
}

// Progress returns the completion percentage, derived from task order so it
// is deterministic and monotonic.
func (s *Session) Progress() float64 {
	if len(s.Tasks) == 0 {
		return 0
	}
	return float64(s.CompletedCount()) / float64(len(s.Tasks)) * 100
}

// Done reports whether every task has reached a terminal state.
func (s *Session) Done() bool {
	return s.CompletedCount() == len(s.Tasks)
}
