package httpserver

import (
	"context"
	"strings"
	"time"

	"pizzeria-storefront/internal/apperr"
	"pizzeria-storefront/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	customerCtxKey    = "customer"
	cartSessionCtxKey = "cart_session"

	cartSessionHeader = "X-Cart-Session"
)

var (
	errMissingBearer      = apperr.New(apperr.CodeUnauthenticated, "missing bearer token")
	errMissingCartSession = apperr.New(apperr.CodeUnauthenticated, "missing cart session")
)

type customerLookup interface {
	LookupByToken(ctx context.Context, token string) (*domain.Customer, error)
}

type cartSessionLookup interface {
	LookupByToken(ctx context.Context, token string) (string, error)
}

// requestLogger writes one access log entry per request.
func requestLogger(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		evt := logger.Info()
		if status >= 500 {
			evt = logger.Error()
		} else if status >= 400 {
			evt = logger.Warn()
		}
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		evt.Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("http request")
	}
}

// requireCustomer resolves the bearer token to a customer or aborts with 401.
func requireCustomer(svc customerLookup, logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			writeError(c, logger, errMissingBearer)
			return
		}
		customer, err := svc.LookupByToken(c.Request.Context(), token)
		if err != nil {
			writeError(c, logger, err)
			return
		}
		c.Set(customerCtxKey, customer)
		c.Next()
	}
}

// requireCartSession resolves the cart session header or aborts with 401.
func requireCartSession(svc cartSessionLookup, logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.GetHeader(cartSessionHeader))
		if token == "" {
			writeError(c, logger, errMissingCartSession)
			return
		}
		sessionID, err := svc.LookupByToken(c.Request.Context(), token)
		if err != nil {
			writeError(c, logger, err)
			return
		}
		c.Set(cartSessionCtxKey, sessionID)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

func customerFrom(c *gin.Context) *domain.Customer {
	v, ok := c.Get(customerCtxKey)
	if !ok {
		return nil
	}
	customer, _ := v.(*domain.Customer)
	return customer
}

func cartSessionFrom(c *gin.Context) string {
	return c.GetString(cartSessionCtxKey)
}
