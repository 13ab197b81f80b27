package db

import (
	"context"
	"fmt"
	"time"

	"taskboard/internal/domain/errors"
	"taskboard/internal/domain/models"
	"taskboard/internal/logging"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	queryTimeout = 15 * time.Second

	// pgUniqueViolation is the SQLSTATE for a unique constraint failure.
	pgUniqueViolation = "23505"

	// Deleted tasks are only flagged; after this many deletions the flagged
	// rows are purged in one statement.
	purgeBatch = 10
)

const (
	sqlCreateUser       = `INSERT INTO users (id, name, email, password_hash) VALUES ($1, $2, $3, $4)`
	sqlGetUserByID      = `SELECT id, name, email, password_hash FROM users WHERE id = $1`
	sqlGetUserByEmail   = `SELECT id, name, email, password_hash FROM users WHERE email = $1`
	sqlUpdatePassword   = `UPDATE users SET password_hash = $1 WHERE email = $2`
	sqlCreateTask       = `INSERT INTO tasks (id, title, description, priority, created_at) VALUES ($1, $2, $3, $4, $5)`
	sqlGetTasks         = `SELECT id, title, description, priority, created_at FROM tasks WHERE deleted = false ORDER BY created_at, id`
	sqlGetTaskByID      = `SELECT id, title, description, priority, created_at FROM tasks WHERE id = $1 AND deleted = false`
	sqlUpdateTask       = `UPDATE tasks SET title = $1, description = $2, priority = $3 WHERE id = $4 AND deleted = false RETURNING created_at`
	sqlSoftDeleteTask   = `UPDATE tasks SET deleted = true WHERE id = $1 AND deleted = false`
	sqlPurgeDeletedTask = `DELETE FROM tasks WHERE deleted = true`
)

type Storage struct {
	pool       *pgxpool.Pool
	log        logging.Logger
	purgeQueue chan struct{}
}

func NewStorage(ctx context.Context, connStr string, log logging.Logger) (*Storage, error) {
	if log == nil {
		log = logging.Discard()
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	log.Info(ctx, "postgres connection established")
	return &Storage{
		pool:       pool,
		log:        log,
		purgeQueue: make(chan struct{}, purgeBatch),
	}, nil
}

func (s *Storage) Close() {
	s.pool.Close()
}

func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	user.ID = models.NewID()
	_, err := s.pool.Exec(ctx, sqlCreateUser, user.ID, user.Name, user.Email, user.PasswordHash)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return errors.ErrUserAlreadyExists
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *Storage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, sqlGetUserByID, id)
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, sqlGetUserByEmail, email)
}

func (s *Storage) getUser(ctx context.Context, query, arg string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	user := &models.User{}
	err := s.pool.QueryRow(ctx, query, arg).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *Storage) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	ct, err := s.pool.Exec(ctx, sqlUpdatePassword, passwordHash, email)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return errors.ErrUserNotFound
	}
	return nil
}

func (s *Storage) CreateTask(ctx context.Context, task *models.Task) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	task.ID = models.NewID()
	_, err := s.pool.Exec(ctx, sqlCreateTask, task.ID, task.Title, task.Description, string(task.Priority), task.CreatedAt)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (s *Storage) GetTasks(ctx context.Context) ([]models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, sqlGetTasks)
	if err != nil {
		return nil, fmt.Errorf("get tasks: %w", err)
	}
	tasks, err := pgx.CollectRows(rows, scanTask)
	if err != nil {
		return nil, fmt.Errorf("get tasks: %w", err)
	}
	return tasks, nil
}

func (s *Storage) GetTaskByID(ctx context.Context, id string) (*models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, sqlGetTaskByID, id)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	task, err := pgx.CollectExactlyOneRow(rows, scanTask)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return &task, nil
}

func (s *Storage) UpdateTask(ctx context.Context, id string, task *models.Task) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var createdAt time.Time
	err := s.pool.QueryRow(ctx, sqlUpdateTask, task.Title, task.Description, string(task.Priority), id).Scan(&createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errors.ErrTaskNotFound
		}
		return fmt.Errorf("update task: %w", err)
	}
	task.ID = id
	task.CreatedAt = createdAt.UTC()
	return nil
}

// DeleteTask flags the task as deleted. Flagged rows are invisible to every
// read and are purged in batches.
func (s *Storage) DeleteTask(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	ct, err := s.pool.Exec(ctx, sqlSoftDeleteTask, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return errors.ErrTaskNotFound
	}
	s.enqueuePurge(ctx)
	return nil
}

func (s *Storage) enqueuePurge(ctx context.Context) {
	select {
	case s.purgeQueue <- struct{}{}:
		return
	default:
	}

	s.drainPurgeQueue()
	affected, err := s.purgeDeleted(context.WithoutCancel(ctx))
	if err != nil {
		s.log.Error(ctx, "purge deleted tasks", "error", err)
		return
	}
	if affected > 0 {
		s.log.Info(ctx, "purged deleted tasks", "count", affected)
	}
}

func (s *Storage) drainPurgeQueue() {
	for {
		select {
		case <-s.purgeQueue:
		default:
			return
		}
	}
}

func (s *Storage) purgeDeleted(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	ct, err := s.pool.Exec(ctx, sqlPurgeDeletedTask)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

func scanTask(row pgx.CollectableRow) (models.Task, error) {
	var (
		task     models.Task
		priority string
	)
	if err := row.Scan(&task.ID, &task.Title, &task.Description, &priority, &task.CreatedAt); err != nil {
		return models.Task{}, err
	}
	task.Priority = models.ParsePriority(priority)
	task.CreatedAt = task.CreatedAt.UTC()
	return task, nil
}
