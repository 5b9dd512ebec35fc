package favorite

import (
	"context"
	"errors"
	"strings"

	"pizzeria-storefront/internal/apperr"
	"pizzeria-storefront/internal/domain"
	favoriterepo "pizzeria-storefront/internal/repository/favorite"

	"github.com/rs/zerolog"
)

var (
	ErrItemNotFound     = apperr.New(apperr.CodeNotFound, "menu item not found")
	ErrFavoriteNotFound = apperr.New(apperr.CodeNotFound, "favorite not found")
)

type catalogSource interface {
	Catalog(ctx context.Context) (*domain.Catalog, error)
}

// Service manages the items a customer has starred.
type Service struct {
	repo    favoriterepo.Repository
	catalog catalogSource
	logger  *zerolog.Logger
}

func New(repo favoriterepo.Repository, catalog catalogSource, logger *zerolog.Logger) *Service {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Service{repo: repo, catalog: catalog, logger: logger}
}

// List returns the customer's favorites, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]domain.Favorite, error) {
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []domain.Favorite{}
	}
	return list, nil
}

// Add stars a catalog item. Name and price are taken from the catalog.
func (s *Service) Add(ctx context.Context, userID, itemID string) (*domain.Favorite, error) {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return nil, apperr.New(apperr.CodeValidation, "itemId is required")
	}
	catalog, err := s.catalog.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	p, ok := catalog.ByID(itemID)
	if !ok {
		return nil, ErrItemNotFound
	}
	f, err := s.repo.Add(ctx, domain.Favorite{
		UserID:    userID,
		ItemID:    p.ID,
		ItemName:  p.Name,
		ItemPrice: p.Price,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug().Str("user_id", userID).Str("item_id", p.ID).Msg("favorite added")
	return f, nil
}

func (s *Service) Remove(ctx context.Context, userID, id string) error {
	err := s.repo.Delete(ctx, userID, id)
	if errors.Is(err, domain.ErrNotFound) {
		return ErrFavoriteNotFound
	}
	return err
}
