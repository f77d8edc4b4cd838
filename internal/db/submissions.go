package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Submission records one pipeline invocation's outcome and, once
// attempted, the downstream SOAP submitter's response.
type Submission struct {
	ID           uuid.UUID  `json:"id"`
	Filename     string     `json:"filename"`
	Code         string     `json:"code"`
	Kind         string     `json:"kind"`
	Source       string     `json:"source"`
	IDPgto       *int       `json:"id_pgto,omitempty"`
	Status       string     `json:"status"` // "submitted" | "submit_failed" | "not_found" | "error"
	Reason       string     `json:"reason,omitempty"`
	SOAPResponse string     `json:"soap_response,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	SubmittedAt  *time.Time `json:"submitted_at,omitempty"`
}

// SubmissionStore persists Submission rows.
type SubmissionStore struct {
	pool *pgxpool.Pool
}

// NewSubmissionStore wraps an already-opened pool.
func NewSubmissionStore(pool *pgxpool.Pool) *SubmissionStore {
	return &SubmissionStore{pool: pool}
}

// Record inserts a new audit-log row and fills in its generated ID and
// creation timestamp.
func (s *SubmissionStore) Record(ctx context.Context, sub *Submission) error {
	const query = `
		INSERT INTO submissions (
			filename, code, kind, source, id_pgto, status, reason
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	return s.pool.QueryRow(ctx, query,
		sub.Filename, sub.Code, sub.Kind, sub.Source, sub.IDPgto, sub.Status, sub.Reason,
	).Scan(&sub.ID, &sub.CreatedAt)
}

// MarkSubmitted attaches the SOAP submitter's response to an existing
// row once the downstream call completes.
func (s *SubmissionStore) MarkSubmitted(ctx context.Context, id uuid.UUID, response string) error {
	const query = `
		UPDATE submissions SET soap_response = $2, submitted_at = now()
		WHERE id = $1
	`
	_, err := s.pool.Exec(ctx, query, id, response)
	return err
}

// Recent returns the most recent submissions, newest first, for an
// operator dashboard.
func (s *SubmissionStore) Recent(ctx context.Context, limit int) ([]Submission, error) {
	const query = `
		SELECT id, filename, code, kind, source, id_pgto, status,
		       COALESCE(reason, ''), COALESCE(soap_response, ''), created_at, submitted_at
		FROM submissions
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Submission
	for rows.Next() {
		var sub Submission
		if err := rows.Scan(
			&sub.ID, &sub.Filename, &sub.Code, &sub.Kind, &sub.Source, &sub.IDPgto,
			&sub.Status, &sub.Reason, &sub.SOAPResponse, &sub.CreatedAt, &sub.SubmittedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}
