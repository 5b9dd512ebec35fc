package recommend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pizzeria-storefront/internal/apperr"
	"pizzeria-storefront/internal/domain"
)

func newRecommender(t *testing.T, status int, body string) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/recommend/popular", "/recommend/user/u1":
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL+"/", time.Second)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

type stubPopular struct {
	items []domain.PopularItem
	err   error
	limit int
}

func (s *stubPopular) Popular(_ context.Context, limit int) ([]domain.PopularItem, error) {
	s.limit = limit
	return s.items, s.err
}

func TestPopularFromRecommender(t *testing.T) {
	svc := New(newRecommender(t, http.StatusOK, `["Margherita","Diavola"]`), nil, nil)
	names, err := svc.Popular(context.Background())
	if err != nil {
		t.Fatalf("Popular: %v", err)
	}
	if len(names) != 2 || names[0] != "Margherita" {
		t.Fatalf("unexpected names %v", names)
	}
}

func TestPopularRecommenderFailure(t *testing.T) {
	svc := New(newRecommender(t, http.StatusInternalServerError, `boom`), &stubPopular{}, nil)
	_, err := svc.Popular(context.Background())
	if apperr.HTTPStatus(err) != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d (%v)", apperr.HTTPStatus(err), err)
	}
}

func TestPopularFallsBackToOrders(t *testing.T) {
	fallback := &stubPopular{items: []domain.PopularItem{{Name: "Quattro Formaggi", Quantity: 9}}}
	svc := New(nil, fallback, nil)

	names, err := svc.Popular(context.Background())
	if err != nil {
		t.Fatalf("Popular: %v", err)
	}
	if len(names) != 1 || names[0] != "Quattro Formaggi" || fallback.limit != 5 {
		t.Fatalf("unexpected fallback result %v (limit %d)", names, fallback.limit)
	}

	fallback.err = errors.New("db down")
	if _, err := svc.Popular(context.Background()); err == nil {
		t.Fatalf("expected fallback error")
	}
}

func TestForUserWrapsSingleObject(t *testing.T) {
	svc := New(newRecommender(t, http.StatusOK, `{"message":"try the Diavola"}`), nil, nil)
	recs, err := svc.ForUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ForUser: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected one record, got %d", len(recs))
	}
}

func TestForUserWithoutRecommender(t *testing.T) {
	svc := New(nil, nil, nil)
	if _, err := svc.ForUser(context.Background(), "u1"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestNewClientRequiresURL(t *testing.T) {
	if _, err := NewClient("  ", 0); err == nil {
		t.Fatalf("expected error for empty url")
	}
}
