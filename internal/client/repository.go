package client

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

const pgUniqueViolation = "23505"

type Repository interface {
	Create(ctx context.Context, c *Client) error
	GetAll(ctx context.Context) ([]Client, error)
	GetByID(ctx context.Context, id int64) (*Client, error)
	GetBySubject(ctx context.Context, subjectID string) (*Client, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, c *Client) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, c *Client) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO clients (name, email, phone, address, subject_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, registered_at
	`, c.Name, c.Email, c.Phone, c.Address, c.SubjectID).
		Scan(&c.ID, &c.RegisteredAt)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
		return ErrEmailExists
	}
	return err
}

func (r *repository) GetAll(ctx context.Context) ([]Client, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, email, phone, address, subject_id, registered_at
		FROM clients ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address,
			&c.SubjectID, &c.RegisteredAt); err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}

	return clients, rows.Err()
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Client, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, address, subject_id, registered_at
		FROM clients WHERE id = $1
	`, id))
}

func (r *repository) GetBySubject(ctx context.Context, subjectID string) (*Client, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, address, subject_id, registered_at
		FROM clients WHERE subject_id = $1
	`, subjectID))
}

func (r *repository) scanOne(row *sql.Row) (*Client, error) {
	var c Client
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address,
		&c.SubjectID, &c.RegisteredAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM clients WHERE email = $1)`, email).
		Scan(&exists)
	return exists, err
}

func (r *repository) Update(ctx context.Context, c *Client) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE clients
		SET name = $1, email = $2, phone = $3, address = $4
		WHERE id = $5
	`, c.Name, c.Email, c.Phone, c.Address, c.ID)
	if err != nil {
		return err
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return ErrClientNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return ErrClientNotFound
	}
	return nil
}
