package recommend

import (
	"context"
	"encoding/json"

	"pizzeria-storefront/internal/apperr"
	"pizzeria-storefront/internal/domain"

	"github.com/rs/zerolog"
)

var ErrUnavailable = apperr.New(apperr.CodeDependency, "recommendations are unavailable, try again")

type recommender interface {
	Popular(ctx context.Context) ([]string, error)
	ForUser(ctx context.Context, userID string) ([]json.RawMessage, error)
}

type popularSource interface {
	Popular(ctx context.Context, limit int) ([]domain.PopularItem, error)
}

// Service fronts the recommender. Without one configured, popular items come from
// order history.
type Service struct {
	client   recommender
	fallback popularSource
	limit    int
	logger   *zerolog.Logger
}

// New accepts a nil client.
func New(client *Client, fallback popularSource, logger *zerolog.Logger) *Service {
	s := &Service{fallback: fallback, limit: 5, logger: logger}
	if client != nil {
		s.client = client
	}
	if s.logger == nil {
		nop := zerolog.Nop()
		s.logger = &nop
	}
	return s
}

func (s *Service) Popular(ctx context.Context) ([]string, error) {
	if s.client == nil {
		return s.popularFromOrders(ctx)
	}
	names, err := s.client.Popular(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("recommend service: popular")
		return nil, apperr.Wrap(apperr.CodeDependency, err, ErrUnavailable.Message())
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

func (s *Service) ForUser(ctx context.Context, userID string) ([]json.RawMessage, error) {
	if s.client == nil {
		return nil, ErrUnavailable
	}
	recs, err := s.client.ForUser(ctx, userID)
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("recommend service: for user")
		return nil, apperr.Wrap(apperr.CodeDependency, err, ErrUnavailable.Message())
	}
	return recs, nil
}

func (s *Service) popularFromOrders(ctx context.Context) ([]string, error) {
	if s.fallback == nil {
		return []string{}, nil
	}
	items, err := s.fallback.Popular(ctx, s.limit)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.Name)
	}
	return names, nil
}
