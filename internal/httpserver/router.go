package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"pizzeria-storefront/internal/domain"
	addresssvc "pizzeria-storefront/internal/service/address"
	cartsvc "pizzeria-storefront/internal/service/cart"
	"pizzeria-storefront/internal/service/checkout"
	customersvc "pizzeria-storefront/internal/service/customer"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v84"
)

type productService interface {
	List(ctx context.Context, categoryID string) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
}

type categoryService interface {
	List(ctx context.Context) ([]domain.Category, error)
}

type cartService interface {
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)
	Apply(ctx context.Context, sessionID string, in cartsvc.UpdateInput) (*domain.Cart, error)
	AddItem(ctx context.Context, sessionID, itemID string) (*domain.Cart, error)
	UpdateQuantity(ctx context.Context, sessionID, itemID string, n int) (*domain.Cart, error)
	Remove(ctx context.Context, sessionID, itemID string) (*domain.Cart, error)
	Clear(ctx context.Context, sessionID string) error
}

type cartSessionService interface {
	cartSessionLookup
	Issue(ctx context.Context) (token, sessionID string, err error)
	TTLSeconds() int
}

type customerService interface {
	customerLookup
	Signup(ctx context.Context, in customersvc.SignupInput) (*domain.Customer, error)
	Login(ctx context.Context, email, password string) (*customersvc.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*customersvc.Session, error)
	UpdateProfile(ctx context.Context, customerID string, in customersvc.ProfileInput) (*domain.Customer, error)
	AccessTTLSeconds() int
}

type addressService interface {
	List(ctx context.Context, userID string) ([]domain.Address, error)
	Create(ctx context.Context, userID string, in addresssvc.Input) (*domain.Address, error)
	Update(ctx context.Context, userID, id string, in addresssvc.Input) (*domain.Address, error)
	Delete(ctx context.Context, userID, id string) error
	SetDefault(ctx context.Context, userID, id string) error
}

type favoriteService interface {
	List(ctx context.Context, userID string) ([]domain.Favorite, error)
	Add(ctx context.Context, userID, itemID string) (*domain.Favorite, error)
	Remove(ctx context.Context, userID, id string) error
}

type checkoutService interface {
	CreateSession(ctx context.Context, customer *domain.Customer, req checkout.Request) (*checkout.Session, error)
	CheckoutCart(ctx context.Context, customer *domain.Customer, cart *domain.Cart, address *domain.AddressSelection) (*checkout.Session, error)
}

type orderService interface {
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	HandleEvent(ctx context.Context, event *stripe.Event) error
}

type recommendService interface {
	Popular(ctx context.Context) ([]string, error)
	ForUser(ctx context.Context, userID string) ([]json.RawMessage, error)
}

type webhookGuard interface {
	CheckAndMark(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
}

type signingSecretSource interface {
	SigningSecret() string
}

// Check is a named readiness probe.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// Deps holds the services the router dispatches to.
type Deps struct {
	ProductSvc   productService
	CategorySvc  categoryService
	CartSvc      cartService
	CartSessions cartSessionService
	CustomerSvc  customerService
	AddressSvc   addressService
	FavoriteSvc  favoriteService
	CheckoutSvc  checkoutService
	OrderSvc     orderService
	RecommendSvc recommendService
	WebhookGuard webhookGuard
	Stripe       signingSecretSource

	Readiness   []Check
	Metrics     http.Handler
	CORSOrigins []string
}

func (d Deps) validate() error {
	switch {
	case d.ProductSvc == nil:
		return errors.New("product service is required")
	case d.CategorySvc == nil:
		return errors.New("category service is required")
	case d.CartSvc == nil:
		return errors.New("cart service is required")
	case d.CartSessions == nil:
		return errors.New("cart session service is required")
	case d.CustomerSvc == nil:
		return errors.New("customer service is required")
	case d.AddressSvc == nil:
		return errors.New("address service is required")
	case d.FavoriteSvc == nil:
		return errors.New("favorite service is required")
	case d.CheckoutSvc == nil:
		return errors.New("checkout service is required")
	case d.OrderSvc == nil:
		return errors.New("order service is required")
	case d.RecommendSvc == nil:
		return errors.New("recommend service is required")
	}
	return nil
}

// buildRouter wires routes for the API.
func buildRouter(logger *zerolog.Logger, deps Deps) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(requestLogger(logger), gin.Recovery())
	if len(deps.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{"Authorization", "Content-Type", cartSessionHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.Readiness))
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics))
	}

	h := &handlers{deps: deps, logger: logger}
	api := router.Group("/api")

	api.GET("/menu", h.listMenu)
	api.GET("/menu/:id", h.getMenuItem)
	api.GET("/categories", h.listCategories)

	auth := api.Group("/auth")
	auth.POST("/signup", h.signup)
	auth.POST("/token", h.token)
	auth.POST("/refresh", h.refresh)

	authed := requireCustomer(deps.CustomerSvc, logger)
	withCart := requireCartSession(deps.CartSessions, logger)

	api.POST("/cart/sessions", h.issueCartSession)
	cart := api.Group("/cart", withCart)
	cart.GET("", h.getCart)
	cart.POST("", h.updateCart)
	cart.DELETE("", h.clearCart)
	cart.POST("/items", h.addCartItem)
	cart.PATCH("/items/:id", h.changeCartItem)
	cart.DELETE("/items/:id", h.removeCartItem)
	cart.POST("/checkout", authed, h.checkoutCart)

	api.POST("/checkout/sessions", authed, h.createCheckoutSession)
	api.POST("/webhooks/stripe", h.stripeWebhook)

	me := api.Group("/me", authed)
	me.GET("", h.me)
	me.PATCH("", h.updateProfile)
	me.GET("/addresses", h.listAddresses)
	me.POST("/addresses", h.createAddress)
	me.PATCH("/addresses/:id", h.updateAddress)
	me.DELETE("/addresses/:id", h.deleteAddress)
	me.POST("/addresses/:id/default", h.setDefaultAddress)
	me.GET("/favorites", h.listFavorites)
	me.POST("/favorites", h.addFavorite)
	me.DELETE("/favorites/:id", h.removeFavorite)

	api.GET("/orders", authed, h.listOrders)

	api.GET("/recommendations/popular", h.popularRecommendations)
	api.GET("/recommendations/me", authed, h.myRecommendations)

	return router, nil
}

type handlers struct {
	deps   Deps
	logger *zerolog.Logger
}

func (h *handlers) fail(c *gin.Context, err error) {
	writeError(c, h.logger, err)
}
