package store

import (
	"slices"

	"github.com/chepyr/task-dashboard/internal/models"
)

type EventType string

const (
	EventTaskCreated  EventType = "task_created"
	EventTaskUpdated  EventType = "task_updated"
	EventTaskDeleted  EventType = "task_deleted"
	EventTasksCleared EventType = "tasks_cleared"
)

// Event describes a mutation that has already been persisted.
type Event struct {
	Type   EventType    `json:"event"`
	TaskID int64        `json:"task_id,omitempty"`
	Task   *models.Task `json:"task,omitempty"`
}

// OnChange registers fn to run after every persisted mutation. Listeners run
// on the mutating goroutine, outside the store lock, one event at a time and
// in commit order. A listener may read the store but must not mutate it.
func (s *Store) OnChange(fn func(Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// publishLocked must be called with s.mu held and releases it. notifyMu is
// acquired first, so a later commit cannot reach the listeners before ev.
func (s *Store) publishLocked(ev Event) {
	listeners := slices.Clone(s.listeners)
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	for _, fn := range listeners {
		fn(ev)
	}
}
