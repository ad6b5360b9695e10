package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/WilliamSoderberg/volley-bracket/models"
)

var (
	ErrTournamentNotFound   = errors.New("tournament not found")
	ErrTournamentIDConflict = errors.New("tournament id already exists")
	// ErrVersionConflict means the stored document moved past the version
	// the caller loaded.
	ErrVersionConflict = errors.New("tournament was modified concurrently")
)

// TournamentRepository stores whole tournament documents. Update succeeds
// only when t.Version equals the stored version, and bumps it.
type TournamentRepository interface {
	Create(ctx context.Context, t *models.Tournament) error
	GetByID(ctx context.Context, id string) (*models.Tournament, error)
	List(ctx context.Context) ([]*models.Tournament, error)
	Update(ctx context.Context, t *models.Tournament) error
	Delete(ctx context.Context, id string) error
}

type postgresTournamentRepository struct {
	db SQLExecutor
}

// NewPostgresTournamentRepository works on a *sql.DB or inside a *sql.Tx.
func NewPostgresTournamentRepository(db SQLExecutor) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	doc, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to encode tournament %s: %w", t.ID, err)
	}
	query := `
		INSERT INTO tournaments (id, name, event_date, document, version)
		VALUES ($1, $2, $3, $4, 1)
		RETURNING version, created_at, updated_at`

	err = r.db.QueryRowContext(ctx, query, t.ID, t.Name, t.Date, doc).
		Scan(&t.Version, &t.CreatedAt, &t.UpdatedAt)
	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	query := `
		SELECT id, document, version, created_at, updated_at
		FROM tournaments
		WHERE id = $1`

	t, err := scanTournament(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context) ([]*models.Tournament, error) {
	query := `
		SELECT id, document, version, created_at, updated_at
		FROM tournaments
		ORDER BY event_date DESC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		t, scanErr := scanTournament(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during tournament rows iteration: %w", err)
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) Update(ctx context.Context, t *models.Tournament) error {
	doc, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to encode tournament %s: %w", t.ID, err)
	}
	query := `
		UPDATE tournaments SET
			name = $1,
			event_date = $2,
			document = $3,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $4 AND version = $5
		RETURNING version, updated_at`

	err = r.db.QueryRowContext(ctx, query, t.Name, t.Date, doc, t.ID, t.Version).
		Scan(&t.Version, &t.UpdatedAt)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return r.handleTournamentError(err)
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM tournaments WHERE id = $1)`, t.ID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check tournament %s: %w", t.ID, err)
	}
	if !exists {
		return ErrTournamentNotFound
	}
	return fmt.Errorf("%w: tournament %s is no longer at version %d", ErrVersionConflict, t.ID, t.Version)
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanTournament decodes the document; the id, version and timestamp
// columns are authoritative over the copies inside it.
func scanTournament(row rowScanner) (*models.Tournament, error) {
	var (
		t                    models.Tournament
		id                   string
		doc                  []byte
		version              int
		createdAt, updatedAt sql.NullTime
	)
	if err := row.Scan(&id, &doc, &version, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(doc, &t); err != nil {
		return nil, fmt.Errorf("failed to decode tournament %s: %w", id, err)
	}
	t.ID, t.Version = id, version
	t.CreatedAt, t.UpdatedAt = createdAt.Time, updatedAt.Time
	return &t, nil
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return ErrTournamentIDConflict
		case "22P02", "22007", "22008":
			return fmt.Errorf("invalid tournament column value: %s", pqErr.Message)
		}
	}
	return err
}
