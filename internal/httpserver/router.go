package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"shopcart/internal/domain"
	tokenrepo "shopcart/internal/repository/token"
	accountsvc "shopcart/internal/service/account"
	cartsvc "shopcart/internal/service/cart"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// CartService covers every cart operation the API exposes.
type CartService interface {
	Get(ctx context.Context, ownerKey string) (*domain.Cart, error)
	Add(ctx context.Context, ownerKey, productID string, quantity int) (*domain.Cart, error)
	Remove(ctx context.Context, ownerKey, productID string) (*domain.Cart, error)
	SetQuantity(ctx context.Context, ownerKey, productID string, quantity int) (*domain.Cart, error)
	Clear(ctx context.Context, ownerKey string) (*domain.Cart, error)
	Delete(ctx context.Context, ownerKey string) error
	Checkout(ctx context.Context, ownerKey string) (*domain.Order, error)
	MergeAnonymous(ctx context.Context, accountKey, anonymousKey string) (*domain.Cart, error)
}

// AccountService covers signup/login.
type AccountService interface {
	Signup(ctx context.Context, in accountsvc.SignupInput) (*domain.Account, error)
	Login(ctx context.Context, email, password string) (*domain.Account, string, error)
	AccessTTLSeconds() int
}

// AnonymousService mints server-issued anonymous identities.
type AnonymousService interface {
	Issue(ctx context.Context) (anonymousID, token string, err error)
	TTLSeconds() int
}

// ProductCatalog is the read side of the catalog.
type ProductCatalog interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, limit, offset int) ([]domain.Product, error)
}

// TokenStore resolves bearer tokens for the auth middleware.
type TokenStore interface {
	Get(ctx context.Context, token string) (*tokenrepo.Token, error)
	Delete(ctx context.Context, token string) error
}

// Deps carries the services the router needs.
type Deps struct {
	CartSvc      CartService
	AccountSvc   AccountService
	AnonymousSvc AnonymousService
	Products     ProductCatalog
	Tokens       TokenStore
}

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, db *pgxpool.Pool, deps Deps, corsOrigins []string) (*gin.Engine, error) {
	if deps.CartSvc == nil || deps.AccountSvc == nil || deps.AnonymousSvc == nil || deps.Products == nil || deps.Tokens == nil {
		return nil, errors.New("httpserver: missing dependencies")
	}

	router := gin.New()
	router.Use(requestLogger(logger), gin.Recovery())
	if len(corsOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     corsOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	v1 := router.Group("/v1")
	{
		v1.POST("/accounts", signupHandler(deps.AccountSvc, logger))
		v1.POST("/accounts/login", loginHandler(deps.AccountSvc, logger))
		v1.POST("/anonymous-sessions", anonymousSessionHandler(deps.AnonymousSvc, logger))

		v1.GET("/products", listProductsHandler(deps.Products, logger))
		v1.GET("/products/:id", getProductHandler(deps.Products, logger))

		carts := v1.Group("/carts/:ownerKey", ownerAuthMiddleware(deps.Tokens, logger))
		{
			carts.GET("", getCartHandler(deps.CartSvc, logger))
			carts.DELETE("", deleteCartHandler(deps.CartSvc, logger))
			carts.POST("/items", addItemHandler(deps.CartSvc, logger))
			carts.PATCH("/items/:productId", updateItemHandler(deps.CartSvc, logger))
			carts.DELETE("/items/:productId", removeItemHandler(deps.CartSvc, logger))
			carts.POST("/clear", clearCartHandler(deps.CartSvc, logger))
			carts.POST("/checkout", checkoutHandler(deps.CartSvc, logger))
			carts.POST("/merge", mergeCartHandler(deps.CartSvc, logger))
		}
	}

	return router, nil
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}

// respondError maps domain errors onto HTTP statuses. Unknown errors become
// 500s and are logged with the request path.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, cartsvc.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrUnauthenticated), errors.Is(err, accountsvc.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrEmptyCart):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
