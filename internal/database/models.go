package database

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Analysis struct {
	ID             uuid.UUID
	ResumeID       uuid.NullUUID
	Status         string
	JobDescription string
	Result         json.RawMessage
	Error          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type ContactMessage struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Subject   string
	Message   string
	CreatedAt time.Time
}

type Resume struct {
	ID         uuid.UUID
	Title      string
	TemplateID int32
	Data       json.RawMessage
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
