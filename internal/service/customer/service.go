package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pizzeria-storefront/internal/apperr"
	"pizzeria-storefront/internal/domain"
	custrepo "pizzeria-storefront/internal/repository/customer"
	tokenrepo "pizzeria-storefront/internal/repository/token"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

var profileValidator = validator.New()

var (
	// ErrInvalidCredentials is returned when email/password do not match.
	ErrInvalidCredentials = apperr.New(apperr.CodeUnauthenticated, "invalid credentials")
	// ErrInvalidToken indicates the provided token could not be validated.
	ErrInvalidToken = apperr.New(apperr.CodeUnauthenticated, "invalid token")
	// ErrEmailTaken is returned when signing up with a registered email.
	ErrEmailTaken = apperr.New(apperr.CodeConflict, "email already registered")
)

// Options configures token issuance.
type Options struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Service handles customer signup/login flows.
type Service struct {
	repo        custrepo.Repository
	tokens      *tokenManager
	accessTTL   time.Duration
	refreshTTL  time.Duration
	passwordMin int
}

// New creates a Service. Zero TTLs fall back to 48h access and 30d refresh.
func New(repo custrepo.Repository, tokens tokenrepo.Repository, opts Options) *Service {
	if opts.AccessTTL <= 0 {
		opts.AccessTTL = 48 * time.Hour
	}
	if opts.RefreshTTL <= 0 {
		opts.RefreshTTL = 30 * 24 * time.Hour
	}
	return &Service{
		repo:        repo,
		tokens:      newTokenManager(tokens, opts.Secret, opts.Issuer),
		accessTTL:   opts.AccessTTL,
		refreshTTL:  opts.RefreshTTL,
		passwordMin: 8,
	}
}

// SignupInput captures fields expected by the signup endpoint.
type SignupInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

// ProfileInput updates the editable profile fields. Nil fields are left unchanged;
// an empty string clears the field.
type ProfileInput struct {
	FirstName *string `json:"firstName" validate:"omitempty,max=100"`
	LastName  *string `json:"lastName" validate:"omitempty,max=100"`
	Phone     *string `json:"phone" validate:"omitempty,max=32"`
}

// Session is the result of a successful login or refresh.
type Session struct {
	Customer     *domain.Customer
	AccessToken  string
	RefreshToken string
}

// Signup registers a new customer.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*domain.Customer, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperr.New(apperr.CodeValidation, "valid email required")
	}
	password := strings.TrimSpace(in.Password)
	if err := validatePassword(password, s.passwordMin); err != nil {
		return nil, apperr.Wrap(apperr.CodeValidation, err, err.Error())
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	c, err := s.repo.Create(ctx, domain.Customer{
		Email:        email,
		PasswordHash: string(hashed),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Phone:        strings.TrimSpace(in.Phone),
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		return nil, ErrEmailTaken
	}
	return c, err
}

// Login validates credentials and issues an access/refresh token pair.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	password = strings.TrimSpace(password)
	c, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(ctx, c)
}

// Refresh rotates a refresh token. The old token is consumed.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	customerID, ok := s.tokens.Consume(ctx, refreshToken)
	if !ok {
		return nil, ErrInvalidToken
	}
	c, err := s.repo.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return s.issue(ctx, c)
}

// LookupByToken returns the customer bound to a valid access token.
func (s *Service) LookupByToken(ctx context.Context, token string) (*domain.Customer, error) {
	customerID, err := s.tokens.ParseAccess(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	c, err := s.repo.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return c, nil
}

// UpdateProfile changes the customer's name and phone.
func (s *Service) UpdateProfile(ctx context.Context, customerID string, in ProfileInput) (*domain.Customer, error) {
	in.FirstName, in.LastName, in.Phone = trimPtr(in.FirstName), trimPtr(in.LastName), trimPtr(in.Phone)
	if err := profileValidator.Struct(in); err != nil {
		return nil, apperr.Wrap(apperr.CodeValidation, err, "invalid profile: names are limited to 100 characters and phone to 32")
	}

	c, err := s.repo.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if in.FirstName != nil {
		c.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		c.LastName = *in.LastName
	}
	if in.Phone != nil {
		c.Phone = *in.Phone
	}
	updated, err := s.repo.UpdateProfile(ctx, *c)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	return updated, err
}

// AccessTTLSeconds exposes the access token lifetime in seconds.
func (s *Service) AccessTTLSeconds() int {
	return int(s.accessTTL.Seconds())
}

func (s *Service) issue(ctx context.Context, c *domain.Customer) (*Session, error) {
	access, err := s.tokens.MintAccess(c.ID, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefresh(ctx, c.ID, s.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &Session{Customer: c, AccessToken: access, RefreshToken: refresh}, nil
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func validatePassword(p string, min int) error {
	trimmed := strings.TrimSpace(p)
	if len(trimmed) < min {
		return fmt.Errorf("password must be at least %d characters", min)
	}
	hasUpper := false
	hasLower := false
	hasDigit := false
	for _, r := range trimmed {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return errors.New("password must contain at least 1 uppercase letter, 1 lowercase letter, and 1 number")
	}
	return nil
}
