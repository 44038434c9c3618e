package assessment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/liamcoop/riskscore/rules"
)

const uniqueViolation = "23505"

// PostgresStore implements Store backed by PostgreSQL. The schema is created
// by the migrations in the migrations directory.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a store over an open database handle
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Add inserts a new assessment
func (s *PostgresStore) Add(ctx context.Context, a *Assessment) error {
	prepare(a)

	profile, err := json.Marshal(a.Profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	documents, err := json.Marshal(a.Documents)
	if err != nil {
		return fmt.Errorf("failed to encode documents: %w", err)
	}
	contributions, err := encodeContributions(a.Result.Contributions)
	if err != nil {
		return fmt.Errorf("failed to encode contributions: %w", err)
	}

	amount := decimal.Zero
	if a.Profile.Amount.Valid {
		amount = a.Profile.Amount.Decimal
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO assessments (
			id, submitted_at, full_name, email, amount, profile, documents,
			ocr_address_text, score, band, action, action_detail,
			contributions, source_of_wealth_category
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, a.ID, a.SubmittedAt, a.Profile.FullName, a.Profile.Email, amount,
		profile, documents, a.OCRAddressText, a.Result.Score, a.Result.Band,
		a.Result.Action, a.Result.ActionDetail, contributions,
		a.Result.SourceOfWealthCategory)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to insert assessment: %w", err)
	}
	return nil
}

// encodeContributions stores a nil list as an empty JSON array.
func encodeContributions(cs []rules.Contribution) ([]byte, error) {
	if cs == nil {
		cs = []rules.Contribution{}
	}
	return json.Marshal(cs)
}

const selectColumns = `
	SELECT id, submitted_at, profile, documents, ocr_address_text, score, band,
		action, action_detail, contributions, source_of_wealth_category
	FROM assessments`

type scanner interface {
	Scan(dest ...any) error
}

func scanAssessment(row scanner) (*Assessment, error) {
	var (
		a             Assessment
		profile       []byte
		documents     []byte
		contributions []byte
	)
	if err := row.Scan(
		&a.ID,
		&a.SubmittedAt,
		&profile,
		&documents,
		&a.OCRAddressText,
		&a.Result.Score,
		&a.Result.Band,
		&a.Result.Action,
		&a.Result.ActionDetail,
		&contributions,
		&a.Result.SourceOfWealthCategory,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(profile, &a.Profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	if err := json.Unmarshal(documents, &a.Documents); err != nil {
		return nil, fmt.Errorf("failed to decode documents: %w", err)
	}
	if err := json.Unmarshal(contributions, &a.Result.Contributions); err != nil {
		return nil, fmt.Errorf("failed to decode contributions: %w", err)
	}
	a.SubmittedAt = a.SubmittedAt.UTC()
	return &a, nil
}

// Get retrieves an assessment by ID
func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*Assessment, error) {
	a, err := scanAssessment(s.db.QueryRowContext(ctx, selectColumns+` WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}
	return a, nil
}

// List returns assessments newest first, optionally filtered by band
func (s *PostgresStore) List(ctx context.Context, f Filter) ([]*Assessment, error) {
	query := selectColumns + `
		WHERE ($1::text = '' OR band = $1)
		ORDER BY submitted_at DESC, seq DESC`
	args := []any{string(f.Band)}
	if f.Limit > 0 {
		query += ` LIMIT $2`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}
	defer rows.Close()

	out := []*Assessment{}
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assessment: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assessments: %w", err)
	}
	return out, nil
}
