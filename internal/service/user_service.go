package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/klm-wiki-api/internal/errs"
	"github.com/klm-wiki-api/internal/models"
	"github.com/klm-wiki-api/internal/repository"
	"github.com/rs/zerolog"
)

// userService is the concrete implementation of UserService
type userService struct {
	users repository.UserRepository
	now   clock
	log   zerolog.Logger
}

func newUserService(users repository.UserRepository, now clock, log zerolog.Logger) *userService {
	return &userService{
		users: users,
		now:   now,
		log:   log.With().Str("service", "user").Logger(),
	}
}

func (s *userService) List(ctx context.Context, params models.ListParams) ([]models.User, error) {
	var page *models.Page
	if params.Requested() {
		p := params.Resolve(defaultOptionalLimit)
		page = &p
	}
	return s.users.List(ctx, page)
}

func (s *userService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errs.NewNotFoundError("User not found")
	}
	return user, nil
}

func (s *userService) Create(ctx context.Context, req *models.UserRequest) (*models.User, error) {
	user := &models.User{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		Role:      roleOrDefault(req.Role),
		CreatedAt: s.now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", user.ID).Msg("User created")
	return user, nil
}

func (s *userService) Update(ctx context.Context, id string, req *models.UserRequest) (*models.User, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:        id,
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		Role:      roleOrDefault(req.Role),
		CreatedAt: existing.CreatedAt,
	}

	found, err := s.users.Update(ctx, user)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errs.NewNotFoundError("User not found")
	}
	return user, nil
}

func (s *userService) UpdateRole(ctx context.Context, id, role string) (*models.User, error) {
	found, err := s.users.UpdateRole(ctx, id, role)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errs.NewNotFoundError("User not found")
	}
	return s.Get(ctx, id)
}

func (s *userService) Delete(ctx context.Context, id string) error {
	found, err := s.users.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return errs.NewNotFoundError("User not found")
	}
	return nil
}

func roleOrDefault(role string) string {
	if role == "" {
		return models.DefaultRole
	}
	return role
}
