package planner

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session хранит контекст конвейера планирования после расчета бюджета:
// исходный запрос и потолки по категориям, которыми ограничиваются агенты.
type Session struct {
	ID         uuid.UUID
	Trip       TripContext
	Allocation AllocationCeilings
	CreatedAt  time.Time
}

type TripContext struct {
	TripType    string
	Origin      string
	Destination string
	StartDate   time.Time
	EndDate     time.Time
	Adults      int
	Children    int
}

type AllocationCeilings struct {
	HotelPerNight    float64
	Transport        float64
	Activities       float64
	ActivitiesPerDay float64
	Days             int
	Nights           int
}

// SessionStore держит сессии планирования в памяти. Конкурентные HTTP-запросы
// работают с разными сессиями независимо, глобального состояния нет.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Create регистрирует новую сессию и возвращает ее идентификатор.
func (s *SessionStore) Create(trip TripContext, ceilings AllocationCeilings) *Session {
	session := &Session{
		ID:         uuid.New(),
		Trip:       trip,
		Allocation: ceilings,
		CreatedAt:  time.Now().UTC(),
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	return session
}

// Get возвращает сессию по идентификатору.
func (s *SessionStore) Get(id uuid.UUID) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	return session, ok
}

// Delete удаляет сессию; повторное удаление безвредно.
func (s *SessionStore) Delete(id uuid.UUID) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}
