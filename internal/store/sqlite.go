package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"habitcoach/internal/database"
	"habitcoach/internal/models"
)

// SQLiteStore implements Repository and SubscriptionStore on SQLite.
type SQLiteStore struct {
	db  *sql.DB
	ids *idSource
}

// NewSQLiteStore opens or creates the database at dbPath.
func NewSQLiteStore(dbPath, encryptionKey string) (*SQLiteStore, error) {
	db, err := database.Initialize(dbPath, encryptionKey)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return &SQLiteStore{db: db, ids: newIDSource()}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const habitColumns = `id, user_id, category, habit_name, habit_description, goal, days, timezone_offset, reminder_time, is_active, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHabit(row rowScanner) (models.Habit, error) {
	var (
		h         models.Habit
		category  string
		days      string
		remind    string
		createdAt sql.NullTime
	)
	err := row.Scan(&h.ID, &h.UserID, &category, &h.Name, &h.Description, &h.Goal,
		&days, &h.TimezoneOffset, &remind, &h.IsActive, &createdAt)
	if err != nil {
		return h, err
	}
	h.Category = models.Category(category)
	if days != "" {
		for _, d := range strings.Split(days, ",") {
			h.Days = append(h.Days, strings.TrimSpace(d))
		}
	}
	if h.ReminderTime, err = models.ParseReminderTime(remind); err != nil {
		return h, fmt.Errorf("habit %s: %w", h.ID, err)
	}
	if createdAt.Valid {
		h.CreatedAt = createdAt.Time
	}
	return h, nil
}

func (s *SQLiteStore) queryHabits(ctx context.Context, query string, args ...any) ([]models.Habit, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	habits := []models.Habit{}
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

func (s *SQLiteStore) CreateHabit(ctx context.Context, h *models.Habit) (models.HabitID, error) {
	id := s.ids.next()
	createdAt := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO habits (`+habitColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, h.UserID, string(h.Category), h.Name, h.Description, h.Goal,
		strings.Join(h.Days, ","), h.TimezoneOffset, h.ReminderTime.String(), true, createdAt,
	)
	if err != nil {
		return "", err
	}
	h.ID = id
	h.IsActive = true
	h.CreatedAt = createdAt
	return id, nil
}

func (s *SQLiteStore) GetHabit(ctx context.Context, id models.HabitID) (*models.Habit, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+habitColumns+` FROM habits WHERE id = ?`, id)
	h, err := scanHabit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (s *SQLiteStore) GetHabitsByUser(ctx context.Context, userID models.UserID) ([]models.Habit, error) {
	return s.queryHabits(ctx, `SELECT `+habitColumns+` FROM habits WHERE user_id = ? ORDER BY id ASC`, userID)
}

func (s *SQLiteStore) GetAllActiveHabits(ctx context.Context) ([]models.Habit, error) {
	return s.queryHabits(ctx, `SELECT `+habitColumns+` FROM habits WHERE is_active = 1 ORDER BY id ASC`)
}

func (s *SQLiteStore) SetActive(ctx context.Context, id models.HabitID, active bool) error {
	result, err := s.db.ExecContext(ctx, "UPDATE habits SET is_active = ? WHERE id = ?", active, id)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Deactivate(ctx context.Context, id models.HabitID) (bool, error) {
	result, err := s.db.ExecContext(ctx, "UPDATE habits SET is_active = 0 WHERE id = ? AND is_active = 1", id)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	return n > 0, err
}

func (s *SQLiteStore) DeleteHabitsByUser(ctx context.Context, userID models.UserID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM habit_logs WHERE user_id = ?", userID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM habits WHERE user_id = ?", userID); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) InsertLog(ctx context.Context, log models.HabitLog) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO habit_logs (user_id, habit_id, date, status)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, habit_id, date) DO NOTHING`,
		log.UserID, log.HabitID, log.Date, string(log.Status),
	)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	return n > 0, err
}

func (s *SQLiteStore) GetLogs(ctx context.Context, userID models.UserID, id models.HabitID) ([]models.Status, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT status FROM habit_logs WHERE user_id = ? AND habit_id = ? ORDER BY date ASC",
		userID, id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	statuses := []models.Status{}
	for rows.Next() {
		var status string
		if err := rows.Scan(&status); err != nil {
			return nil, err
		}
		statuses = append(statuses, models.Status(status))
	}
	return statuses, rows.Err()
}

func (s *SQLiteStore) DeleteLogs(ctx context.Context, id models.HabitID, userID models.UserID) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM habit_logs WHERE habit_id = ? AND user_id = ?", id, userID)
	return err
}

func (s *SQLiteStore) ResetHabit(ctx context.Context, id models.HabitID, userID models.UserID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, "UPDATE habits SET is_active = 1 WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM habit_logs WHERE habit_id = ? AND user_id = ?", id, userID); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) SaveSubscription(ctx context.Context, sub models.PushSubscription) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO push_subscriptions (user_id, endpoint, p256dh, auth)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, endpoint) DO UPDATE SET
		p256dh = excluded.p256dh,
		auth = excluded.auth`,
		sub.UserID, sub.Endpoint, sub.P256dh, sub.Auth,
	)
	return err
}

func (s *SQLiteStore) DeleteSubscription(ctx context.Context, userID models.UserID, endpoint string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM push_subscriptions WHERE user_id = ? AND endpoint = ?",
		userID, endpoint,
	)
	return err
}

func (s *SQLiteStore) DeleteSubscriptionByEndpoint(ctx context.Context, endpoint string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM push_subscriptions WHERE endpoint = ?", endpoint)
	return err
}

func (s *SQLiteStore) ListSubscriptions(ctx context.Context, userID models.UserID) ([]models.PushSubscription, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id, endpoint, p256dh, auth FROM push_subscriptions WHERE user_id = ?",
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subs := []models.PushSubscription{}
	for rows.Next() {
		var sub models.PushSubscription
		if err := rows.Scan(&sub.UserID, &sub.Endpoint, &sub.P256dh, &sub.Auth); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}
