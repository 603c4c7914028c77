package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const createSession = `-- name: CreateSession :one
INSERT INTO sessions (
id, name, user_id, status, job_title, job_description, skills, skills_profile)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, created_at, name, user_id, status, job_title, job_description, skills, skills_profile
`

type CreateSessionParams struct {
	ID             uuid.UUID
	Name           string
	UserID         uuid.UUID
	Status         string
	JobTitle       string
	JobDescription string
	Skills         []string
	SkillsProfile  string
}

func (q *Queries) CreateSession(ctx context.Context, arg CreateSessionParams) (Session, error) {
	row := q.db.QueryRowContext(ctx, createSession,
		arg.ID,
		arg.Name,
		arg.UserID,
		arg.Status,
		arg.JobTitle,
		arg.JobDescription,
		pq.Array(arg.Skills),
		arg.SkillsProfile,
	)
	var i Session
	err := row.Scan(
		&i.ID,
		&i.CreatedAt,
		&i.Name,
		&i.UserID,
		&i.Status,
		&i.JobTitle,
		&i.JobDescription,
		pq.Array(&i.Skills),
		&i.SkillsProfile,
	)
	return i, err
}

const getSession = `-- name: GetSession :one
SELECT id, created_at, name, user_id, status, job_title, job_description, skills, skills_profile FROM sessions WHERE id=$1
`

func (q *Queries) GetSession(ctx context.Context, id uuid.UUID) (Session, error) {
	row := q.db.QueryRowContext(ctx, getSession, id)
	var i Session
	err := row.Scan(
		&i.ID,
		&i.CreatedAt,
		&i.Name,
		&i.UserID,
		&i.Status,
		&i.JobTitle,
		&i.JobDescription,
		pq.Array(&i.Skills),
		&i.SkillsProfile,
	)
	return i, err
}

const updateSessionStatus = `-- name: UpdateSessionStatus :exec
UPDATE sessions
SET status=$1
WHERE id=$2
`

type UpdateSessionStatusParams struct {
	Status string
	ID     uuid.UUID
}

func (q *Queries) UpdateSessionStatus(ctx context.Context, arg UpdateSessionStatusParams) error {
	_, err := q.db.ExecContext(ctx, updateSessionStatus, arg.Status, arg.ID)
	return err
}
