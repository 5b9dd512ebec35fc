package cart

import (
	"context"
	"errors"
	"strings"

	"pizzeria-storefront/internal/apperr"
	"pizzeria-storefront/internal/domain"
	cartrepo "pizzeria-storefront/internal/repository/cart"
)

var (
	ErrItemNotFound = apperr.New(apperr.CodeNotFound, "item not found")
	ErrLineNotFound = apperr.New(apperr.CodeNotFound, "cart line not found")
	ErrCartBusy     = apperr.New(apperr.CodeConflict, "cart is being updated, try again")
)

// Service applies cart engine operations to session carts. Prices always come from
// the catalog.
type Service struct {
	repo    cartRepo
	catalog catalogSource
	metrics mutationRecorder
}

type cartRepo interface {
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)
	Update(ctx context.Context, sessionID string, fn func(*domain.Cart) error) (*domain.Cart, error)
	Delete(ctx context.Context, sessionID string) error
}

type catalogSource interface {
	Catalog(ctx context.Context) (*domain.Catalog, error)
}

type mutationRecorder interface {
	CartMutation(action string)
}

func New(repo cartrepo.Repository, catalog catalogSource, metrics mutationRecorder) *Service {
	return &Service{repo: repo, catalog: catalog, metrics: metrics}
}

// UpdateInput is a batch of actions applied atomically to one cart.
type UpdateInput struct {
	Actions []UpdateAction `json:"actions"`
}

type UpdateAction struct {
	Action   string `json:"action"`
	ItemID   string `json:"itemId,omitempty"`
	Quantity int    `json:"quantity,omitempty"`
}

func (s *Service) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	return s.repo.Get(ctx, sessionID)
}

func (s *Service) AddItem(ctx context.Context, sessionID, itemID string) (*domain.Cart, error) {
	return s.Apply(ctx, sessionID, UpdateInput{Actions: []UpdateAction{{Action: "addItem", ItemID: itemID}}})
}

// UpdateQuantity sets a line's quantity; n <= 0 removes it. An unknown line is not
// found when n > 0 and a no-op otherwise.
func (s *Service) UpdateQuantity(ctx context.Context, sessionID, itemID string, n int) (*domain.Cart, error) {
	return s.Apply(ctx, sessionID, UpdateInput{Actions: []UpdateAction{{Action: "changeQuantity", ItemID: itemID, Quantity: n}}})
}

func (s *Service) Remove(ctx context.Context, sessionID, itemID string) (*domain.Cart, error) {
	return s.Apply(ctx, sessionID, UpdateInput{Actions: []UpdateAction{{Action: "removeItem", ItemID: itemID}}})
}

func (s *Service) Clear(ctx context.Context, sessionID string) error {
	if err := s.repo.Delete(ctx, sessionID); err != nil {
		return err
	}
	s.record("clear")
	return nil
}

// Apply runs every action against the cart inside one atomic update.
func (s *Service) Apply(ctx context.Context, sessionID string, in UpdateInput) (*domain.Cart, error) {
	if len(in.Actions) == 0 {
		return nil, apperr.New(apperr.CodeValidation, "actions required")
	}
	catalog, err := s.catalog.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	applied := make([]string, 0, len(in.Actions))
	cart, err := s.repo.Update(ctx, sessionID, func(c *domain.Cart) error {
		applied = applied[:0]
		for _, action := range in.Actions {
			name, err := apply(c, catalog, action)
			if err != nil {
				return err
			}
			applied = append(applied, name)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, cartrepo.ErrConflict) {
			return nil, ErrCartBusy
		}
		return nil, err
	}
	for _, name := range applied {
		s.record(name)
	}
	return cart, nil
}

func apply(c *domain.Cart, catalog *domain.Catalog, action UpdateAction) (string, error) {
	itemID := strings.TrimSpace(action.ItemID)
	switch strings.ToLower(strings.TrimSpace(action.Action)) {
	case "additem":
		if itemID == "" {
			return "", apperr.New(apperr.CodeValidation, "itemId required")
		}
		p, ok := catalog.ByID(itemID)
		if !ok {
			return "", ErrItemNotFound
		}
		c.Add(domain.LineFromProduct(p))
		return "add", nil
	case "changequantity":
		if itemID == "" {
			return "", apperr.New(apperr.CodeValidation, "itemId required")
		}
		if !c.UpdateQuantity(itemID, action.Quantity) && action.Quantity > 0 {
			return "", ErrLineNotFound
		}
		return "update_quantity", nil
	case "removeitem":
		if itemID == "" {
			return "", apperr.New(apperr.CodeValidation, "itemId required")
		}
		c.Remove(itemID)
		return "remove", nil
	case "clear":
		c.Clear()
		return "clear", nil
	default:
		return "", apperr.New(apperr.CodeValidation, "unsupported action")
	}
}

func (s *Service) record(action string) {
	if s.metrics != nil {
		s.metrics.CartMutation(action)
	}
}
