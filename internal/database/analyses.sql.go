package database

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

const completeAnalysis = `-- name: CompleteAnalysis :exec
UPDATE analyses
SET status='completed', result=$2, error='', updated_at=CURRENT_TIMESTAMP
WHERE id=$1
`

type CompleteAnalysisParams struct {
	ID     uuid.UUID
	Result json.RawMessage
}

func (q *Queries) CompleteAnalysis(ctx context.Context, arg CompleteAnalysisParams) error {
	_, err := q.db.ExecContext(ctx, completeAnalysis, arg.ID, arg.Result)
	return err
}

const createAnalysis = `-- name: CreateAnalysis :one
INSERT INTO analyses (id, resume_id, job_description)
VALUES ($1, $2, $3)
RETURNING id, resume_id, status, job_description, result, error, created_at, updated_at
`

type CreateAnalysisParams struct {
	ID             uuid.UUID
	ResumeID       uuid.NullUUID
	JobDescription string
}

func (q *Queries) CreateAnalysis(ctx context.Context, arg CreateAnalysisParams) (Analysis, error) {
	row := q.db.QueryRowContext(ctx, createAnalysis, arg.ID, arg.ResumeID, arg.JobDescription)
	var i Analysis
	err := row.Scan(
		&i.ID,
		&i.ResumeID,
		&i.Status,
		&i.JobDescription,
		&i.Result,
		&i.Error,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const failAnalysis = `-- name: FailAnalysis :exec
UPDATE analyses
SET status='failed', error=$2, updated_at=CURRENT_TIMESTAMP
WHERE id=$1
`

type FailAnalysisParams struct {
	ID    uuid.UUID
	Error string
}

func (q *Queries) FailAnalysis(ctx context.Context, arg FailAnalysisParams) error {
	_, err := q.db.ExecContext(ctx, failAnalysis, arg.ID, arg.Error)
	return err
}

const getAnalysis = `-- name: GetAnalysis :one
SELECT id, resume_id, status, job_description, result, error, created_at, updated_at FROM analyses WHERE id=$1
`

func (q *Queries) GetAnalysis(ctx context.Context, id uuid.UUID) (Analysis, error) {
	row := q.db.QueryRowContext(ctx, getAnalysis, id)
	var i Analysis
	err := row.Scan(
		&i.ID,
		&i.ResumeID,
		&i.Status,
		&i.JobDescription,
		&i.Result,
		&i.Error,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const updateAnalysisStatus = `-- name: UpdateAnalysisStatus :exec
UPDATE analyses 
SET status=$1, updated_at=CURRENT_TIMESTAMP
WHERE id=$2
`

type UpdateAnalysisStatusParams struct {
	Status string
	ID     uuid.UUID
}

func (q *Queries) UpdateAnalysisStatus(ctx context.Context, arg UpdateAnalysisStatusParams) error {
	_, err := q.db.ExecContext(ctx, updateAnalysisStatus, arg.Status, arg.ID)
	return err
}
