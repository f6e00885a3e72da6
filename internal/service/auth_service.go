package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mahdiyarhamdi/sheetaro/internal/models"
	"github.com/mahdiyarhamdi/sheetaro/internal/pkg/apperror"
	"github.com/mahdiyarhamdi/sheetaro/internal/repository"
	"github.com/mahdiyarhamdi/sheetaro/internal/validation"
)

// AuthRepository describes the storage dependencies of AuthService.
type AuthRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	RegisterPrintShop(ctx context.Context, shop *models.PrintShop) error
}

// AuthService handles registration and authentication.
type AuthService struct {
	repo         AuthRepository
	tokenManager *TokenManager
}

// RegisterInput carries the sign-up form.
type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
	Phone       *string
	City        *string
	Role        string
}

// LoginInput carries the credentials.
type LoginInput struct {
	Email    string
	Password string
}

// AuthResult is the outcome of registration or login.
type AuthResult struct {
	User      *models.User
	TokenPair *TokenPair
}

// NewAuthService creates the authentication service.
func NewAuthService(repo AuthRepository, tokenManager *TokenManager) *AuthService {
	return &AuthService{
		repo:         repo,
		tokenManager: tokenManager,
	}
}

// Register creates a new account. Staff roles are assigned by an admin
// later; self-registration always produces a customer.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeBadRequest, err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeBadRequest, err.Error())
	}
	if err := validation.ValidateDisplayName(in.DisplayName); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeBadRequest, err.Error())
	}
	if err := validation.ValidatePhone(in.Phone); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeBadRequest, err.Error())
	}

	role := in.Role
	if role == "" {
		role = models.RoleCustomer
	}
	if role != models.RoleCustomer {
		return nil, apperror.New(apperror.ErrCodeForbidden, "staff accounts are created by an admin")
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "password hashing failed")
	}

	user := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: string(passHash),
		DisplayName:  strings.TrimSpace(in.DisplayName),
		Phone:        in.Phone,
		City:         in.City,
		Role:         role,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperror.New(apperror.ErrCodeConflict, "email is already registered")
		}
		return nil, err
	}

	tokenPair, _, err := s.tokenManager.GeneratePair(user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, TokenPair: tokenPair}, nil
}

// Login verifies the credentials and issues tokens.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, apperror.New(apperror.ErrCodeUnauthorized, "invalid email or password")
	}

	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.New(apperror.ErrCodeUnauthorized, "invalid email or password")
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, apperror.New(apperror.ErrCodeForbidden, "account is disabled")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, apperror.New(apperror.ErrCodeUnauthorized, "invalid email or password")
	}

	tokenPair, _, err := s.tokenManager.GeneratePair(user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, TokenPair: tokenPair}, nil
}

// Refresh issues a new token pair from a valid refresh token.
func (s *AuthService) Refresh(ctx context.Context, oldToken string) (*TokenPair, error) {
	claims, err := s.tokenManager.ParseRefresh(oldToken)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeUnauthorized, "refresh token is invalid")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeUnauthorized, "refresh token subject is invalid")
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUnauthorized
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperror.New(apperror.ErrCodeForbidden, "account is disabled")
	}

	tokenPair, _, err := s.tokenManager.GeneratePair(user)
	if err != nil {
		return nil, err
	}
	return tokenPair, nil
}

// StaffInput carries an admin-created staff account.
type StaffInput struct {
	Email       string
	Password    string
	DisplayName string
	Role        string

	// Print shops only.
	ShopName     string
	ShopPriority int
}

// CreateStaff creates a designer, validator or print-shop account.
// Print shops also enter the offer rotation with the given priority.
func (s *AuthService) CreateStaff(ctx context.Context, in StaffInput) (*models.User, error) {
	if _, ok := models.ValidRoles[in.Role]; !ok || in.Role == models.RoleCustomer {
		return nil, apperror.Newf(apperror.ErrCodeBadRequest, "role %q is not a staff role", in.Role)
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeBadRequest, err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeBadRequest, err.Error())
	}
	if err := validation.ValidateDisplayName(in.DisplayName); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeBadRequest, err.Error())
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "password hashing failed")
	}

	user := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: string(passHash),
		DisplayName:  strings.TrimSpace(in.DisplayName),
		Role:         in.Role,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperror.New(apperror.ErrCodeConflict, "email is already registered")
		}
		return nil, err
	}

	if in.Role == models.RolePrintShop {
		name := in.ShopName
		if name == "" {
			name = user.DisplayName
		}
		shop := &models.PrintShop{
			UserID:   user.ID,
			Name:     name,
			Priority: in.ShopPriority,
		}
		if err := s.repo.RegisterPrintShop(ctx, shop); err != nil {
			return nil, err
		}
	}

	return user, nil
}

// Me returns the user behind an authenticated request.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
