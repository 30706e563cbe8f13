package user

import (
	"context"
	defError "errors"
	"innovation-portal/internal/domain"
	"innovation-portal/internal/errors"
	"innovation-portal/internal/workflow"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const searchLimit = 20

// Service defines the interface for user business logic
type Service interface {
	Register(ctx context.Context, user *domain.User) error
	Login(ctx context.Context, email, password string) (*domain.User, error)
	GetUserByID(ctx context.Context, id uint64) (*domain.User, error)
	DeactivateUser(ctx context.Context, id uint64) error
	IncreaseTokenVersion(ctx context.Context, id uint64) error
	SearchUsers(ctx context.Context, query string) ([]domain.SafeUser, error)
	ListRoles(ctx context.Context) ([]domain.Role, error)
	AssignRole(ctx context.Context, userID uint64, role string) (*domain.SafeUser, error)
	RevokeRole(ctx context.Context, userID uint64, role string) (*domain.SafeUser, error)
}

// DefaultService implements Service
type DefaultService struct {
	repository UserRepository
}

// NewService creates a new user service
func NewService(repository UserRepository) Service {
	return &DefaultService{repository: repository}
}

// Register registers a new user with the submitter role
func (s *DefaultService) Register(ctx context.Context, user *domain.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	// Check if user with email already exists
	_, err := s.repository.FindByEmail(ctx, user.Email)
	if err != nil && !defError.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if err == nil {
		return errors.UnprocessableEntity("User already registered", nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return errors.UnprocessableEntity("Can't hash password", err)
	}
	user.PasswordHash = string(hashedPassword)
	user.IsActive = true

	role, err := s.repository.EnsureRole(ctx, string(workflow.RoleSubmitter))
	if err != nil {
		return err
	}
	user.Roles = []domain.Role{*role}

	return s.repository.Create(ctx, user)
}

// Login authenticates a user
func (s *DefaultService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.repository.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, errors.Unauthorized("User not found", err)
	}

	if !user.IsActive {
		return nil, errors.Unauthorized("User is not active", nil)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		return nil, errors.UnprocessableEntity("Wrong password", err)
	}

	return user, nil
}

// GetUserByID gets a user by ID
func (s *DefaultService) GetUserByID(ctx context.Context, id uint64) (*domain.User, error) {
	user, err := s.repository.FindByID(ctx, id)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("User not found", err)
		}
		return nil, err
	}
	return user, nil
}

// DeactivateUser deactivates a user
func (s *DefaultService) DeactivateUser(ctx context.Context, id uint64) error {
	return s.repository.Deactivate(ctx, id)
}

func (s *DefaultService) IncreaseTokenVersion(ctx context.Context, id uint64) error {
	return s.repository.IncreaseTokenVersion(ctx, id)
}

func (s *DefaultService) SearchUsers(ctx context.Context, query string) ([]domain.SafeUser, error) {
	users, err := s.repository.Search(ctx, strings.TrimSpace(query), searchLimit)
	if err != nil {
		return nil, err
	}

	result := make([]domain.SafeUser, 0, len(users))
	for i := range users {
		result = append(result, users[i].ToSafeUser())
	}
	return result, nil
}

func (s *DefaultService) ListRoles(ctx context.Context) ([]domain.Role, error) {
	return s.repository.ListRoles(ctx)
}

func (s *DefaultService) AssignRole(ctx context.Context, userID uint64, roleName string) (*domain.SafeUser, error) {
	if !workflow.Role(roleName).Valid() {
		return nil, errors.UnprocessableEntity("Unknown role", nil)
	}

	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, r := range user.Roles {
		if r.Name == roleName {
			return nil, errors.Conflict("User already has this role", nil)
		}
	}

	role, err := s.repository.EnsureRole(ctx, roleName)
	if err != nil {
		return nil, err
	}
	if err := s.repository.AssignRole(ctx, userID, role); err != nil {
		return nil, err
	}

	user.Roles = append(user.Roles, *role)
	safe := user.ToSafeUser()
	return &safe, nil
}

func (s *DefaultService) RevokeRole(ctx context.Context, userID uint64, roleName string) (*domain.SafeUser, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	kept := make([]domain.Role, 0, len(user.Roles))
	var revoked *domain.Role
	for i := range user.Roles {
		if user.Roles[i].Name == roleName {
			revoked = &user.Roles[i]
			continue
		}
		kept = append(kept, user.Roles[i])
	}
	if revoked == nil {
		return nil, errors.UnprocessableEntity("User doesn't have this role", nil)
	}

	if err := s.repository.RevokeRole(ctx, userID, revoked); err != nil {
		return nil, err
	}

	user.Roles = kept
	safe := user.ToSafeUser()
	return &safe, nil
}
