package product

import (
	"context"
	"sync"
	"time"

	"pizzeria-storefront/internal/domain"
	productrepo "pizzeria-storefront/internal/repository/product"
)

// Service serves the menu from an in-memory Catalog loaded from the repository and
// refreshed once it is older than the configured TTL.
type Service struct {
	repo productrepo.Repository
	ttl  time.Duration
	now  func() time.Time

	mu       sync.RWMutex
	catalog  *domain.Catalog
	loadedAt time.Time
}

func New(repo productrepo.Repository, ttl time.Duration) *Service {
	return &Service{repo: repo, ttl: ttl, now: time.Now}
}

// Catalog returns the cached catalog, loading it on first use or when stale.
func (s *Service) Catalog(ctx context.Context) (*domain.Catalog, error) {
	s.mu.RLock()
	c, loadedAt := s.catalog, s.loadedAt
	s.mu.RUnlock()

	if c != nil && (s.ttl <= 0 || s.now().Sub(loadedAt) < s.ttl) {
		return c, nil
	}
	return s.Reload(ctx)
}

// Reload replaces the cached catalog with the repository contents.
func (s *Service) Reload(ctx context.Context) (*domain.Catalog, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	c := domain.NewCatalog(items)

	s.mu.Lock()
	s.catalog = c
	s.loadedAt = s.now()
	s.mu.Unlock()
	return c, nil
}

// List returns the menu, optionally filtered by category.
func (s *Service) List(ctx context.Context, categoryID string) ([]domain.Product, error) {
	c, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	items := c.Items()
	if categoryID == "" {
		return items, nil
	}
	filtered := items[:0]
	for _, p := range items {
		if p.CategoryID == categoryID {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	c, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	p, ok := c.ByID(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}
