// Package store owns the task collection. Every mutation is validated,
// applied to a copy, written to durable storage as a full JSON snapshot and
// only then made visible, so memory and storage never disagree.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/chepyr/task-dashboard/internal/models"
	"github.com/chepyr/task-dashboard/internal/storage"
)

const DefaultTasksKey = "tasks"

type Store struct {
	mu              sync.Mutex
	kv              storage.KV
	key             string
	defaultPriority models.Priority
	now             func() time.Time

	tasks     []models.Task
	lastID    int64
	listeners []func(Event)

	// notifyMu is taken before mu is released so listeners see events in
	// commit order.
	notifyMu sync.Mutex
}

type Option func(*Store)

// WithKey changes the storage key the collection is kept under.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// WithDefaultPriority sets the priority given to drafts that leave it unset.
func WithDefaultPriority(p models.Priority) Option {
	return func(s *Store) {
		if p.Valid() {
			s.defaultPriority = p
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(kv storage.KV, opts ...Option) *Store {
	s := &Store{
		kv:              kv,
		key:             DefaultTasksKey,
		defaultPriority: models.DefaultPriority,
		now:             time.Now,
		tasks:           []models.Task{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize loads the stored collection. A missing, unreadable or malformed
// entry leaves the store empty; the problem is logged, not returned. Stored
// tasks go through the same checks as drafts: an unknown priority becomes
// the default and tasks that still fail are dropped.
func (s *Store) Initialize(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = []models.Task{}
	s.lastID = 0

	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		log.WithError(err).Warnf("read %q from storage, starting empty", s.key)
		return
	}
	if !ok {
		return
	}

	var loaded []models.Task
	if err := json.Unmarshal([]byte(raw), &loaded); err != nil {
		log.WithError(err).Warnf("stored %q is malformed, starting empty", s.key)
		return
	}

	seen := make(map[int64]bool, len(loaded))
	for _, t := range loaded {
		if seen[t.ID] {
			log.Warnf("dropping duplicate stored task id %d", t.ID)
			continue
		}
		clean, err := s.sanitizeStored(t)
		if err != nil {
			log.WithError(err).Warnf("dropping invalid stored task id %d", t.ID)
			continue
		}
		seen[t.ID] = true
		s.tasks = append(s.tasks, clean)
		s.lastID = max(s.lastID, t.ID)
	}
	log.Debugf("loaded %d tasks from storage", len(s.tasks))
}

// Create validates the draft, assigns a fresh id and appends the task.
func (s *Store) Create(ctx context.Context, draft models.Draft) (models.Task, error) {
	draft = normalizeDraft(draft)
	if err := validateDraft(draft); err != nil {
		return models.Task{}, err
	}

	s.mu.Lock()
	task := models.Task{
		ID:          s.nextIDLocked(),
		Title:       draft.Title,
		Description: draft.Description,
		DueDate:     draft.DueDate,
		Priority:    s.priorityOrDefault(draft.Priority),
		Category:    draft.Category,
		Completed:   false,
	}
	next := append(slices.Clone(s.tasks), task)
	if err := s.commitLocked(ctx, next); err != nil {
		s.mu.Unlock()
		return models.Task{}, err
	}
	s.lastID = task.ID

	s.publishLocked(Event{Type: EventTaskCreated, TaskID: task.ID, Task: &task})
	return task, nil
}

// Update overwrites every field of task id except the id itself. Completed
// is kept unless the draft sets it.
func (s *Store) Update(ctx context.Context, id int64, draft models.Draft) (models.Task, error) {
	draft = normalizeDraft(draft)
	if err := validateDraft(draft); err != nil {
		return models.Task{}, err
	}

	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return models.Task{}, fmt.Errorf("update task %d: %w", id, ErrNotFound)
	}
	task := models.Task{
		ID:          id,
		Title:       draft.Title,
		Description: draft.Description,
		DueDate:     draft.DueDate,
		Priority:    s.priorityOrDefault(draft.Priority),
		Category:    draft.Category,
		Completed:   s.tasks[idx].Completed,
	}
	if draft.Completed != nil {
		task.Completed = *draft.Completed
	}
	next := slices.Clone(s.tasks)
	next[idx] = task
	if err := s.commitLocked(ctx, next); err != nil {
		s.mu.Unlock()
		return models.Task{}, err
	}

	s.publishLocked(Event{Type: EventTaskUpdated, TaskID: id, Task: &task})
	return task, nil
}

// Remove deletes task id. A missing id is not an error; the collection is
// written back either way.
func (s *Store) Remove(ctx context.Context, id int64) error {
	s.mu.Lock()
	removed := false
	next := make([]models.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if t.ID == id {
			removed = true
			continue
		}
		next = append(next, t)
	}
	if err := s.commitLocked(ctx, next); err != nil {
		s.mu.Unlock()
		return err
	}
	if !removed {
		s.mu.Unlock()
		return nil
	}

	s.publishLocked(Event{Type: EventTaskDeleted, TaskID: id})
	return nil
}

func (s *Store) ToggleCompleted(ctx context.Context, id int64) (models.Task, error) {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return models.Task{}, fmt.Errorf("toggle task %d: %w", id, ErrNotFound)
	}
	next := slices.Clone(s.tasks)
	next[idx].Completed = !next[idx].Completed
	task := next[idx]
	if err := s.commitLocked(ctx, next); err != nil {
		s.mu.Unlock()
		return models.Task{}, err
	}

	s.publishLocked(Event{Type: EventTaskUpdated, TaskID: id, Task: &task})
	return task, nil
}

// Clear removes every task and persists the empty collection.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	if err := s.commitLocked(ctx, []models.Task{}); err != nil {
		s.mu.Unlock()
		return err
	}

	s.publishLocked(Event{Type: EventTasksCleared})
	return nil
}

// List returns a copy of the collection in insertion order.
func (s *Store) List() []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.tasks)
}

func (s *Store) Get(id int64) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		return models.Task{}, fmt.Errorf("get task %d: %w", id, ErrNotFound)
	}
	return s.tasks[idx], nil
}

// commitLocked writes next to storage and, only on success, makes it the
// current collection.
func (s *Store) commitLocked(ctx context.Context, next []models.Task) error {
	b, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, string(b)); err != nil {
		log.WithError(err).Errorf("persist %d tasks", len(next))
		return fmt.Errorf("persist tasks: %w", err)
	}
	s.tasks = next
	return nil
}

// nextIDLocked is time based like the ids already in stored data, but never
// goes below the last id handed out, so two creations in the same
// millisecond still get distinct ids.
func (s *Store) nextIDLocked() int64 {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	return id
}

// sanitizeStored returns t with its fields normalised, or an error when it
// would not pass as a draft.
func (s *Store) sanitizeStored(t models.Task) (models.Task, error) {
	d := normalizeDraft(models.DraftFrom(t))
	if !d.Priority.Valid() {
		d.Priority = s.defaultPriority
	}
	if err := validateDraft(d); err != nil {
		return t, err
	}
	t.Title = d.Title
	t.Description = d.Description
	t.DueDate = d.DueDate
	t.Priority = d.Priority
	t.Category = d.Category
	return t, nil
}

func (s *Store) indexLocked(id int64) int {
	return slices.IndexFunc(s.tasks, func(t models.Task) bool { return t.ID == id })
}

func (s *Store) priorityOrDefault(p models.Priority) models.Priority {
	if p == "" {
		return s.defaultPriority
	}
	return p
}
