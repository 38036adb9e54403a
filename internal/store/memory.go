package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"habitcoach/internal/models"
)

type logKey struct {
	userID  models.UserID
	habitID models.HabitID
	date    string
}

// MemoryStore is an in-process Repository and SubscriptionStore. State is
// lost on restart.
type MemoryStore struct {
	mu     sync.RWMutex
	ids    *idSource
	habits map[models.HabitID]models.Habit
	logs   map[logKey]models.Status
	subs   map[models.UserID]map[string]models.PushSubscription
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		ids:    newIDSource(),
		habits: make(map[models.HabitID]models.Habit),
		logs:   make(map[logKey]models.Status),
		subs:   make(map[models.UserID]map[string]models.PushSubscription),
	}
}

func copyHabit(h models.Habit) models.Habit {
	h.Days = append([]string(nil), h.Days...)
	return h
}

func (s *MemoryStore) sorted(keep func(models.Habit) bool) []models.Habit {
	out := []models.Habit{}
	for _, h := range s.habits {
		if keep(h) {
			out = append(out, copyHabit(h))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *MemoryStore) CreateHabit(_ context.Context, h *models.Habit) (models.HabitID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h.ID = s.ids.next()
	h.IsActive = true
	h.CreatedAt = time.Now().UTC()
	s.habits[h.ID] = copyHabit(*h)
	return h.ID, nil
}

func (s *MemoryStore) GetHabit(_ context.Context, id models.HabitID) (*models.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.habits[id]
	if !ok {
		return nil, ErrNotFound
	}
	h = copyHabit(h)
	return &h, nil
}

func (s *MemoryStore) GetHabitsByUser(_ context.Context, userID models.UserID) ([]models.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sorted(func(h models.Habit) bool { return h.UserID == userID }), nil
}

func (s *MemoryStore) GetAllActiveHabits(_ context.Context) ([]models.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sorted(func(h models.Habit) bool { return h.IsActive }), nil
}

func (s *MemoryStore) SetActive(_ context.Context, id models.HabitID, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.habits[id]
	if !ok {
		return ErrNotFound
	}
	h.IsActive = active
	s.habits[id] = h
	return nil
}

func (s *MemoryStore) Deactivate(_ context.Context, id models.HabitID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.habits[id]
	if !ok || !h.IsActive {
		return false, nil
	}
	h.IsActive = false
	s.habits[id] = h
	return true, nil
}

func (s *MemoryStore) DeleteHabitsByUser(_ context.Context, userID models.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, h := range s.habits {
		if h.UserID == userID {
			delete(s.habits, id)
		}
	}
	for k := range s.logs {
		if k.userID == userID {
			delete(s.logs, k)
		}
	}
	return nil
}

func (s *MemoryStore) InsertLog(_ context.Context, log models.HabitLog) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.habits[log.HabitID]; !ok {
		return false, ErrNotFound
	}
	k := logKey{userID: log.UserID, habitID: log.HabitID, date: log.Date}
	if _, exists := s.logs[k]; exists {
		return false, nil
	}
	s.logs[k] = log.Status
	return true, nil
}

func (s *MemoryStore) GetLogs(_ context.Context, userID models.UserID, id models.HabitID) ([]models.Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []logKey
	for k := range s.logs {
		if k.userID == userID && k.habitID == id {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].date < keys[j].date })

	statuses := make([]models.Status, 0, len(keys))
	for _, k := range keys {
		statuses = append(statuses, s.logs[k])
	}
	return statuses, nil
}

func (s *MemoryStore) DeleteLogs(_ context.Context, id models.HabitID, userID models.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteLogsLocked(id, userID)
	return nil
}

func (s *MemoryStore) deleteLogsLocked(id models.HabitID, userID models.UserID) {
	for k := range s.logs {
		if k.habitID == id && k.userID == userID {
			delete(s.logs, k)
		}
	}
}

func (s *MemoryStore) ResetHabit(_ context.Context, id models.HabitID, userID models.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.habits[id]
	if !ok || h.UserID != userID {
		return ErrNotFound
	}
	h.IsActive = true
	s.habits[id] = h
	s.deleteLogsLocked(id, userID)
	return nil
}

func (s *MemoryStore) SaveSubscription(_ context.Context, sub models.PushSubscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.subs[sub.UserID] == nil {
		s.subs[sub.UserID] = make(map[string]models.PushSubscription)
	}
	s.subs[sub.UserID][sub.Endpoint] = sub
	return nil
}

func (s *MemoryStore) DeleteSubscription(_ context.Context, userID models.UserID, endpoint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs[userID], endpoint)
	return nil
}

func (s *MemoryStore) DeleteSubscriptionByEndpoint(_ context.Context, endpoint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, byEndpoint := range s.subs {
		delete(byEndpoint, endpoint)
	}
	return nil
}

func (s *MemoryStore) ListSubscriptions(_ context.Context, userID models.UserID) ([]models.PushSubscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subs := []models.PushSubscription{}
	for _, sub := range s.subs[userID] {
		subs = append(subs, sub)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].Endpoint < subs[j].Endpoint })
	return subs, nil
}
