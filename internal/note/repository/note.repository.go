package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"privatenotes/internal/note/model"
	"privatenotes/pkg/logger"
)

// ErrNotFound means no row matched both the note id and the owner.
var ErrNotFound = errors.New("note not found")

// Repository is the Record Store. Every method is scoped to userID.
type Repository interface {
	List(ctx context.Context, userID string) ([]model.Note, error)
	Get(ctx context.Context, id, userID string) (*model.Note, error)
	Create(ctx context.Context, userID, title, content string) (*model.Note, error)
	Update(ctx context.Context, id, userID, title, content string) (*model.Note, error)
	// Delete succeeds whether or not a row matched.
	Delete(ctx context.Context, id, userID string) error
}

const noteColumns = `id, user_id, title, content, created_at, updated_at`

type PostgresRepository struct {
	DB *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (*model.Note, error) {
	var n model.Note
	if err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *PostgresRepository) List(ctx context.Context, userID string) ([]model.Note, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		logger.Sugar.Errorf("Failed to list notes for user %s: %v", userID, err)
		return nil, err
	}
	defer rows.Close()

	notes := []model.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			logger.Sugar.Errorf("Failed to scan note for user %s: %v", userID, err)
			return nil, err
		}
		notes = append(notes, *n)
	}
	if err := rows.Err(); err != nil {
		logger.Sugar.Errorf("Failed to iterate notes for user %s: %v", userID, err)
		return nil, err
	}
	return notes, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id, userID string) (*model.Note, error) {
	// notes.id is a uuid column; anything else cannot match.
	if !isUUID(id) {
		return nil, ErrNotFound
	}
	n, err := scanNote(r.DB.QueryRowContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE id = $1 AND user_id = $2`, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to get note %s: %v", id, err)
		return nil, err
	}
	return n, nil
}

func (r *PostgresRepository) Create(ctx context.Context, userID, title, content string) (*model.Note, error) {
	n, err := scanNote(r.DB.QueryRowContext(ctx,
		`INSERT INTO notes (user_id, title, content) VALUES ($1, $2, $3) RETURNING `+noteColumns,
		userID, title, content))
	if err != nil {
		logger.Sugar.Errorf("Failed to create note for user %s: %v", userID, err)
		return nil, err
	}
	return n, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id, userID, title, content string) (*model.Note, error) {
	if !isUUID(id) {
		return nil, ErrNotFound
	}
	n, err := scanNote(r.DB.QueryRowContext(ctx,
		`UPDATE notes SET title = $1, content = $2, updated_at = NOW() WHERE id = $3 AND user_id = $4 RETURNING `+noteColumns,
		title, content, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to update note %s: %v", id, err)
		return nil, err
	}
	return n, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id, userID string) error {
	if !isUUID(id) {
		return nil
	}
	_, err := r.DB.ExecContext(ctx, `DELETE FROM notes WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		logger.Sugar.Errorf("Failed to delete note %s: %v", id, err)
	}
	return err
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
