package database

import (
	"context"

	"github.com/google/uuid"
)

const createContactMessage = `-- name: CreateContactMessage :one
INSERT INTO contact_messages (id, name, email, subject, message)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, name, email, subject, message, created_at
`

type CreateContactMessageParams struct {
	ID      uuid.UUID
	Name    string
	Email   string
	Subject string
	Message string
}

func (q *Queries) CreateContactMessage(ctx context.Context, arg CreateContactMessageParams) (ContactMessage, error) {
	row := q.db.QueryRowContext(ctx, createContactMessage,
		arg.ID,
		arg.Name,
		arg.Email,
		arg.Subject,
		arg.Message,
	)
	var i ContactMessage
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Email,
		&i.Subject,
		&i.Message,
		&i.CreatedAt,
	)
	return i, err
}
