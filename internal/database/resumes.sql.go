package database

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

const createResume = `-- name: CreateResume :one
INSERT INTO resumes (id, title, template_id, data)
VALUES ($1, $2, $3, $4)
RETURNING id, title, template_id, data, created_at, updated_at
`

type CreateResumeParams struct {
	ID         uuid.UUID
	Title      string
	TemplateID int32
	Data       json.RawMessage
}

func (q *Queries) CreateResume(ctx context.Context, arg CreateResumeParams) (Resume, error) {
	row := q.db.QueryRowContext(ctx, createResume,
		arg.ID,
		arg.Title,
		arg.TemplateID,
		arg.Data,
	)
	var i Resume
	err := row.Scan(
		&i.ID,
		&i.Title,
		&i.TemplateID,
		&i.Data,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const deleteResume = `-- name: DeleteResume :execrows
DELETE FROM resumes WHERE id=$1
`

func (q *Queries) DeleteResume(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteResume, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getResume = `-- name: GetResume :one
SELECT id, title, template_id, data, created_at, updated_at FROM resumes WHERE id=$1
`

func (q *Queries) GetResume(ctx context.Context, id uuid.UUID) (Resume, error) {
	row := q.db.QueryRowContext(ctx, getResume, id)
	var i Resume
	err := row.Scan(
		&i.ID,
		&i.Title,
		&i.TemplateID,
		&i.Data,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listResumes = `-- name: ListResumes :many
SELECT id, title, template_id, data, created_at, updated_at FROM resumes
ORDER BY updated_at DESC
LIMIT $1
`

func (q *Queries) ListResumes(ctx context.Context, limit int32) ([]Resume, error) {
	rows, err := q.db.QueryContext(ctx, listResumes, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Resume
	for rows.Next() {
		var i Resume
		if err := rows.Scan(
			&i.ID,
			&i.Title,
			&i.TemplateID,
			&i.Data,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateResume = `-- name: UpdateResume :one
UPDATE resumes
SET title=$2, template_id=$3, data=$4, updated_at=CURRENT_TIMESTAMP
WHERE id=$1
RETURNING id, title, template_id, data, created_at, updated_at
`

type UpdateResumeParams struct {
	ID         uuid.UUID
	Title      string
	TemplateID int32
	Data       json.RawMessage
}

func (q *Queries) UpdateResume(ctx context.Context, arg UpdateResumeParams) (Resume, error) {
	row := q.db.QueryRowContext(ctx, updateResume,
		arg.ID,
		arg.Title,
		arg.TemplateID,
		arg.Data,
	)
	var i Resume
	err := row.Scan(
		&i.ID,
		&i.Title,
		&i.TemplateID,
		&i.Data,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
