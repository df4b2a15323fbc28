// Package thread holds in-memory conversation threads: Thread, Message and
// the ThreadStore that owns them, per spec.md §4.7/§4.8.
package thread

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agentcore/agentcore/internal/domain/task"
)

// Role identifies who produced a Message.
type Role int

const (
	RoleUser Role = iota
	RoleAssistant
)

// Message is one turn in a Thread. WorkUnit is attached post-hoc by the
// executor once the task dispatched for this message terminates — nil until
// then.
type Message struct {
	ID        string
	Role      Role
	Content   string
	CreatedAt time.Time
	TaskID    string
	WorkUnit  *task.WorkUnit
}

// Thread is one conversation: an ordered message log plus the metadata a UI
// needs to list active conversations.
type Thread struct {
	ID        string
	Name      string
	CreatedAt time.Time

	mu       sync.Mutex
	messages []Message
}

// AppendMessage appends msg, preserving append-order-equals-emission-order
// per spec.md §5.
func (t *Thread) AppendMessage(msg Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, msg)
}

// Messages returns a snapshot copy of the thread's messages so callers never
// observe a partially-appended slice.
func (t *Thread) Messages() []Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// AttachWorkUnit finds the last message with the given taskID and attaches
// wu, implementing "a message's work_unit is attached post-hoc by the
// executor when a task completes for that message" (spec.md §4.7).
func (t *Thread) AttachWorkUnit(taskID string, wu *task.WorkUnit) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := len(t.messages) - 1; i >= 0; i-- {
		if t.messages[i].TaskID == taskID {
			t.messages[i].WorkUnit = wu
			return true
		}
	}
	return false
}

// RecentMessages returns up to limit of the most recent messages' content,
// oldest first — satisfies contextengine.HistoryReader.
func (t *Thread) RecentMessages(limit int) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if limit <= 0 || limit > len(t.messages) {
		limit = len(t.messages)
	}
	start := len(t.messages) - limit
	out := make([]string, 0, limit)
	for _, m := range t.messages[start:] {
		out = append(out, m.Content)
	}
	return out
}

// Store holds threads in memory keyed by thread ID, serialized behind a
// mutex per spec.md §5's "holders must not hold it across suspension
// points" discipline — every method here returns quickly without doing any
// IO while the lock is held.
type Store struct {
	mu      sync.Mutex
	threads map[string]*Thread
}

// NewStore constructs an empty Store.
func NewStore() *Store {
	return &Store{threads: make(map[string]*Thread)}
}

// CreateThread allocates and registers a new Thread named name.
func (s *Store) CreateThread(name string) *Thread {
	s.mu.Lock()
	defer s.mu.Unlock()
	th := &Thread{ID: uuid.NewString(), Name: name, CreatedAt: time.Now()}
	s.threads[th.ID] = th
	return th
}

// GetThread returns the thread registered under id, if any.
func (s *Store) GetThread(id string) (*Thread, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	th, ok := s.threads[id]
	return th, ok
}

// ActiveThreads returns every registered thread.
func (s *Store) ActiveThreads() []*Thread {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Thread, 0, len(s.threads))
	for _, th := range s.threads {
		out = append(out, th)
	}
	return out
}

// RecentMessages looks up threadID and returns its limit most recent
// messages' content — satisfies contextengine.HistoryReader so a Store can
// be handed straight to NewContextBuilder.
func (s *Store) RecentMessages(threadID string, limit int) []string {
	th, ok := s.GetThread(threadID)
	if !ok {
		return nil
	}
	return th.RecentMessages(limit)
}

// Persister saves a Thread to an external collaborator — spec.md §4.7 names
// persistence as out of this package's scope ("external collaborator").
type Persister interface {
	Save(th *Thread) error
}

// SaveThread persists th via persister, if one is configured.
func (s *Store) SaveThread(th *Thread, persister Persister) error {
	if persister == nil {
		return nil
	}
	return persister.Save(th)
}

