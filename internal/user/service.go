package user

import (
	"context"

	"tienda-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service is the identity collaborator: it owns account provisioning and
// credential checks so the commerce packages never touch password material.
type Service interface {
	CreateAccount(ctx context.Context, username, email, password string, role Role) (string, error)
	DeleteAccount(ctx context.Context, subjectID string) error
	ResetPassword(ctx context.Context, subjectID, newPassword string) error
	UpdateEmail(ctx context.Context, subjectID, email string) error
	ExistsUsername(ctx context.Context, username string) (bool, error)
	ExistsEmail(ctx context.Context, email string) (bool, error)
	Login(ctx context.Context, email, password string) (string, *Account, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// CreateAccount provisions a new identity and returns its subject id.
func (s *service) CreateAccount(ctx context.Context, username, email, password string, role Role) (string, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("method", "CreateAccount"),
		zap.String("username", username),
	)

	hashed, err := HashPassword(password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return "", err
	}

	acct := &Account{
		SubjectID: uuid.New().String(),
		Username:  username,
		Email:     email,
		Password:  hashed,
		Role:      role,
	}

	if err := s.repo.Create(ctx, acct); err != nil {
		log.Error("failed to create account", zap.Error(err))
		return "", err
	}

	log.Info("account created", zap.String("subject_id", acct.SubjectID))
	return acct.SubjectID, nil
}

func (s *service) DeleteAccount(ctx context.Context, subjectID string) error {
	return s.repo.Delete(ctx, subjectID)
}

func (s *service) ResetPassword(ctx context.Context, subjectID, newPassword string) error {
	hashed, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, subjectID, hashed)
}

func (s *service) UpdateEmail(ctx context.Context, subjectID, email string) error {
	return s.repo.UpdateEmail(ctx, subjectID, email)
}

func (s *service) ExistsUsername(ctx context.Context, username string) (bool, error) {
	return s.repo.ExistsUsername(ctx, username)
}

func (s *service) ExistsEmail(ctx context.Context, email string) (bool, error) {
	return s.repo.ExistsEmail(ctx, email)
}

func (s *service) Login(ctx context.Context, email, password string) (string, *Account, error) {
	acct, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}

	if !CheckPasswordHash(password, acct.Password) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := GenerateJWT(acct.SubjectID, string(acct.Role), acct.Email)
	if err != nil {
		return "", nil, err
	}
	return token, acct, nil
}
