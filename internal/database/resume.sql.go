package database

import (
	"context"

	"github.com/google/uuid"
)

const createResume = `-- name: CreateResume :one
INSERT INTO resumes (
id, original_filename, mime, size_bytes, storage_provider, object_key, storage_url, upload_status, session_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id, original_filename, mime, size_bytes, storage_provider, object_key, storage_url, upload_status, created_at, session_id
`

type CreateResumeParams struct {
	ID               uuid.UUID
	OriginalFilename string
	Mime             string
	SizeBytes        int64
	StorageProvider  string
	ObjectKey        string
	StorageUrl       string
	UploadStatus     string
	SessionID        uuid.UUID
}

func (q *Queries) CreateResume(ctx context.Context, arg CreateResumeParams) (Resume, error) {
	row := q.db.QueryRowContext(ctx, createResume,
		arg.ID,
		arg.OriginalFilename,
		arg.Mime,
		arg.SizeBytes,
		arg.StorageProvider,
		arg.ObjectKey,
		arg.StorageUrl,
		arg.UploadStatus,
		arg.SessionID,
	)
	var i Resume
	err := row.Scan(
		&i.ID,
		&i.OriginalFilename,
		&i.Mime,
		&i.SizeBytes,
		&i.StorageProvider,
		&i.ObjectKey,
		&i.StorageUrl,
		&i.UploadStatus,
		&i.CreatedAt,
		&i.SessionID,
	)
	return i, err
}

const getResumesBySession = `-- name: GetResumesBySession :many
SELECT id, original_filename, mime, size_bytes, storage_provider, object_key, storage_url, upload_status, created_at, session_id FROM resumes WHERE session_id=$1 ORDER BY created_at
`

func (q *Queries) GetResumesBySession(ctx context.Context, sessionID uuid.UUID) ([]Resume, error) {
	rows, err := q.db.QueryContext(ctx, getResumesBySession, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Resume
	for rows.Next() {
		var i Resume
		if err := rows.Scan(
			&i.ID,
			&i.OriginalFilename,
			&i.Mime,
			&i.SizeBytes,
			&i.StorageProvider,
			&i.ObjectKey,
			&i.StorageUrl,
			&i.UploadStatus,
			&i.CreatedAt,
			&i.SessionID,
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
