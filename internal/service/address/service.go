package address

import (
	"context"
	"errors"
	"strings"

	"pizzeria-storefront/internal/apperr"
	"pizzeria-storefront/internal/domain"
	addressrepo "pizzeria-storefront/internal/repository/address"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

var (
	ErrAddressNotFound   = apperr.New(apperr.CodeNotFound, "address not found")
	ErrAddressIncomplete = apperr.New(apperr.CodeValidation, "street, city, state and zipCode are required")
)

// Service manages profile addresses and resolves the delivery address for checkout.
type Service struct {
	repo   addressrepo.Repository
	logger *zerolog.Logger
}

func New(repo addressrepo.Repository, logger *zerolog.Logger) *Service {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Service{repo: repo, logger: logger}
}

// Input is the payload for creating or updating a saved address.
type Input struct {
	Label     string `json:"label" validate:"max=64"`
	Street    string `json:"street" validate:"required,max=200"`
	City      string `json:"city" validate:"required,max=100"`
	State     string `json:"state" validate:"required,max=100"`
	ZipCode   string `json:"zipCode" validate:"required,max=20"`
	IsDefault bool   `json:"isDefault"`
}

func (in Input) normalized() Input {
	in.Label = strings.TrimSpace(in.Label)
	in.Street = strings.TrimSpace(in.Street)
	in.City = strings.TrimSpace(in.City)
	in.State = strings.TrimSpace(in.State)
	in.ZipCode = strings.TrimSpace(in.ZipCode)
	return in
}

func (s *Service) List(ctx context.Context, userID string) ([]domain.Address, error) {
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []domain.Address{}
	}
	return list, nil
}

func (s *Service) Create(ctx context.Context, userID string, in Input) (*domain.Address, error) {
	in = in.normalized()
	if err := validateInput(in); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, domain.Address{
		UserID:    userID,
		Label:     in.Label,
		Street:    in.Street,
		City:      in.City,
		State:     in.State,
		ZipCode:   in.ZipCode,
		IsDefault: in.IsDefault,
	})
}

func (s *Service) Update(ctx context.Context, userID, id string, in Input) (*domain.Address, error) {
	in = in.normalized()
	if err := validateInput(in); err != nil {
		return nil, err
	}
	a, err := s.repo.Update(ctx, domain.Address{
		ID:        id,
		UserID:    userID,
		Label:     in.Label,
		Street:    in.Street,
		City:      in.City,
		State:     in.State,
		ZipCode:   in.ZipCode,
		IsDefault: in.IsDefault,
	})
	return a, notFound(err)
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return notFound(s.repo.Delete(ctx, userID, id))
}

func (s *Service) SetDefault(ctx context.Context, userID, id string) error {
	return notFound(s.repo.SetDefault(ctx, userID, id))
}

// Resolve picks the delivery address for a checkout. A saved id must belong to the
// user; an inline address must be complete; no request falls back to the default
// saved address. It returns nil when the user has nothing to offer.
func (s *Service) Resolve(ctx context.Context, userID string, requested *domain.AddressSelection) (*domain.AddressSelection, error) {
	saved, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	r := NewResolver()
	r.Load(saved)

	switch {
	case requested == nil:
		if r.AdHoc() {
			// nothing saved to fall back on
			return nil, nil
		}
		return r.Selected(), nil
	case strings.TrimSpace(requested.AddressID) != "":
		a, ok := r.Find(strings.TrimSpace(requested.AddressID))
		if !ok {
			return nil, ErrAddressNotFound
		}
		r.SelectSaved(a)
	default:
		r.StartNew()
		r.EnterNew(*requested)
		r.SetSaveToProfile(requested.SaveToProfile)
		if r.Selected() == nil {
			return nil, ErrAddressIncomplete
		}
	}
	return r.Selected(), nil
}

// SaveSelection persists a confirmed ad-hoc selection to the user's profile.
func (s *Service) SaveSelection(ctx context.Context, userID string, sel domain.AddressSelection) (*domain.Address, error) {
	a, err := s.Create(ctx, userID, Input{
		Street:  sel.Street,
		City:    sel.City,
		State:   sel.State,
		ZipCode: sel.ZipCode,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("address service: save selection")
		return nil, err
	}
	return a, nil
}

func validateInput(in Input) error {
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field())
			}
			return apperr.Wrap(apperr.CodeValidation, err, "invalid address: "+strings.Join(fields, ", "))
		}
		return apperr.Wrap(apperr.CodeValidation, err, "invalid address")
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return ErrAddressNotFound
	}
	return err
}
