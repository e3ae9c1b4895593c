package user

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

const pgUniqueViolation = "23505"

type Repository interface {
	Create(ctx context.Context, acct *Account) error
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindBySubject(ctx context.Context, subjectID string) (*Account, error)
	ExistsUsername(ctx context.Context, username string) (bool, error)
	ExistsEmail(ctx context.Context, email string) (bool, error)
	UpdateEmail(ctx context.Context, subjectID, email string) error
	UpdatePassword(ctx context.Context, subjectID, hash string) error
	Delete(ctx context.Context, subjectID string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, acct *Account) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO accounts (subject_id, username, email, password, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, acct.SubjectID, acct.Username, acct.Email, acct.Password, acct.Role).
		Scan(&acct.ID, &acct.CreatedAt)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
		if pqErr.Constraint == "accounts_username_key" {
			return ErrUsernameExists
		}
		return ErrEmailExists
	}
	return err
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, `
		SELECT id, subject_id, username, email, password, role, created_at
		FROM accounts WHERE email = $1
	`, email))
}

func (r *repository) FindBySubject(ctx context.Context, subjectID string) (*Account, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, `
		SELECT id, subject_id, username, email, password, role, created_at
		FROM accounts WHERE subject_id = $1
	`, subjectID))
}

func (r *repository) scanOne(row *sql.Row) (*Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.SubjectID, &a.Username, &a.Email, &a.Password, &a.Role, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) ExistsUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM accounts WHERE username = $1)`, username).
		Scan(&exists)
	return exists, err
}

func (r *repository) ExistsEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM accounts WHERE email = $1)`, email).
		Scan(&exists)
	return exists, err
}

func (r *repository) UpdateEmail(ctx context.Context, subjectID, email string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET email = $1 WHERE subject_id = $2`, email, subjectID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *repository) UpdatePassword(ctx context.Context, subjectID, hash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET password = $1 WHERE subject_id = $2`, hash, subjectID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *repository) Delete(ctx context.Context, subjectID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM accounts WHERE subject_id = $1`, subjectID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrAccountNotFound
	}
	return nil
}
