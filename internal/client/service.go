package client

import (
	"context"
	"strings"

	"tienda-be/internal/logger"
	"tienda-be/internal/user"

	"go.uber.org/zap"
)

type Service interface {
	Create(ctx context.Context, input ClientInput) (*Client, error)
	GetAll(ctx context.Context) ([]Client, error)
	GetByID(ctx context.Context, id int64) (*Client, error)
	GetBySubject(ctx context.Context, subjectID string) (*Client, error)
	Update(ctx context.Context, id int64, input ClientInput) (*Client, error)
	Delete(ctx context.Context, id int64) error
	ResetPassword(ctx context.Context, id int64, newPassword string) error
	IsOwner(ctx context.Context, clientID int64, subjectID string) bool
}

type service struct {
	repo     Repository
	identity user.Service
}

func NewService(repo Repository, identity user.Service) Service {
	return &service{repo: repo, identity: identity}
}

// Create provisions the identity account first and persists the client row
// carrying the returned subject id, mirroring how the two stores are linked.
func (s *service) Create(ctx context.Context, input ClientInput) (*Client, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("method", "CreateClient"),
		zap.String("email", input.Email),
	)

	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrNameRequired
	}

	exists, err := s.repo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	if taken, err := s.identity.ExistsUsername(ctx, input.Username); err != nil {
		return nil, err
	} else if taken {
		return nil, user.ErrUsernameExists
	}

	if taken, err := s.identity.ExistsEmail(ctx, input.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, user.ErrEmailExists
	}

	subjectID, err := s.identity.CreateAccount(ctx, input.Username, input.Email, input.Password, user.RoleUser)
	if err != nil {
		log.Error("failed to provision identity account", zap.Error(err))
		return nil, err
	}

	c := &Client{
		Name:      input.Name,
		Email:     input.Email,
		Phone:     input.Phone,
		Address:   input.Address,
		SubjectID: subjectID,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		log.Error("failed to persist client, removing orphan account", zap.Error(err))
		if delErr := s.identity.DeleteAccount(ctx, subjectID); delErr != nil {
			log.Error("failed to remove orphan account", zap.Error(delErr))
		}
		return nil, err
	}

	log.Info("client created",
		zap.Int64("client_id", c.ID),
		zap.String("subject_id", subjectID),
	)
	return c, nil
}

func (s *service) GetAll(ctx context.Context) ([]Client, error) {
	return s.repo.GetAll(ctx)
}

func (s *service) GetByID(ctx context.Context, id int64) (*Client, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetBySubject(ctx context.Context, subjectID string) (*Client, error) {
	return s.repo.GetBySubject(ctx, subjectID)
}

func (s *service) Update(ctx context.Context, id int64, input ClientInput) (*Client, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(input.Name) != "" {
		c.Name = input.Name
	}
	c.Phone = input.Phone
	c.Address = input.Address

	// Email changes propagate to the identity account as well.
	if input.Email != "" && input.Email != c.Email {
		if err := s.identity.UpdateEmail(ctx, c.SubjectID, input.Email); err != nil {
			return nil, err
		}
		c.Email = input.Email
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("client updated", zap.Int64("client_id", c.ID))
	return c, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.identity.DeleteAccount(ctx, c.SubjectID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	logger.FromCtx(ctx).Info("client deleted", zap.Int64("client_id", id))
	return nil
}

func (s *service) ResetPassword(ctx context.Context, id int64, newPassword string) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return s.identity.ResetPassword(ctx, c.SubjectID, newPassword)
}

// IsOwner reports whether the subject owns the client record. It fails closed:
// lookup errors yield false rather than leaking existence through an error.
func (s *service) IsOwner(ctx context.Context, clientID int64, subjectID string) bool {
	c, err := s.repo.GetByID(ctx, clientID)
	if err != nil {
		logger.FromCtx(ctx).Debug("ownership check failed closed",
			zap.Int64("client_id", clientID), zap.Error(err))
		return false
	}
	return c.SubjectID == subjectID
}
