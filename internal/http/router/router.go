package router

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/oakmart/storefront-api/internal/auditlog"
	"github.com/oakmart/storefront-api/internal/auth"
	"github.com/oakmart/storefront-api/internal/cart"
	"github.com/oakmart/storefront-api/internal/catalog"
	"github.com/oakmart/storefront-api/internal/config"
	"github.com/oakmart/storefront-api/internal/sellers"
)

type healthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
}

type api struct {
	logger   zerolog.Logger
	users    *auth.Service
	tokens   *auth.TokenManager
	sessions *auth.SessionStore
	sellers  *sellers.Service
	catalog  *catalog.Service
	carts    *cart.Service
	audit    *auditlog.Service
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(healthResponse{
		Status:    "ok",
		Service:   "storefront-api",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// New creates the production router: identity resolution and the route
// authorization gate run globally, ahead of every handler.
func New(cfg config.Config, logger zerolog.Logger) (http.Handler, error) {
	tokenManager, err := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	if err != nil {
		return nil, err
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	userService := auth.NewService(auth.BuildBootstrapGrants(cfg.CEOEmails, cfg.SuperuserEmails))
	sellerService := sellers.NewService()

	quality := func(sellerID string) []catalog.SellerQuality {
		seller, exists := sellerService.GetByID(sellerID)
		if !exists {
			return nil
		}
		return catalog.QualitiesFor(seller.Verified, seller.RatingAverage, seller.CreatedAt, time.Now().UTC())
	}

	var store catalog.ProductStore = catalog.NewMemoryStore(quality)
	if cfg.DatabaseURL != "" {
		db, openErr := sql.Open("postgres", cfg.DatabaseURL)
		if openErr != nil {
			return nil, openErr
		}
		store = catalog.NewPostgresStore(db)
	}

	apiHandlers := &api{
		logger:   logger,
		users:    userService,
		tokens:   tokenManager,
		sessions: auth.NewSessionStore(redisClient),
		sellers:  sellerService,
		catalog:  catalog.NewService(store, quality, logger.With().Str("component", "catalog").Logger()),
		carts:    cart.NewService(),
		audit:    auditlog.NewService(),
	}
	if cfg.Environment == "development" && cfg.DatabaseURL == "" {
		apiHandlers.seedDevelopmentCatalog()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(securityHeaders)
	r.Use(corsHeaders(cfg.AllowedOrigins))
	r.Use(apiHandlers.resolveIdentity)
	r.Use(apiHandlers.gate)

	r.Get("/health", healthHandler)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(authFlow chi.Router) {
		authFlow.Use(httprate.LimitByIP(cfg.AuthRateLimit, time.Minute))
		authFlow.Post("/api/auth/register", apiHandlers.handleAuthRegister)
		authFlow.Post("/api/auth/login", apiHandlers.handleAuthLogin)
		authFlow.Post("/api/auth/refresh", apiHandlers.handleAuthRefresh)
	})
	r.Post("/api/auth/logout", apiHandlers.handleAuthLogout)
	r.Get("/api/auth/me", apiHandlers.handleAuthMe)

	r.Get("/api/products", apiHandlers.handleProductList)
	r.Get("/api/products/{productID}", apiHandlers.handleProductDetail)
	r.Get("/api/categories", apiHandlers.handleCategories)

	r.Get("/api/account/permissions", apiHandlers.handleAccountPermissions)
	r.Post("/api/account/seller", apiHandlers.handleSellerRegister)

	r.Get("/api/cart", apiHandlers.handleCartGet)
	r.Post("/api/cart/items", apiHandlers.handleCartAddItem)
	r.Patch("/api/cart/items/{itemID}", apiHandlers.handleCartUpdateItem)
	r.Delete("/api/cart/items/{itemID}", apiHandlers.handleCartDeleteItem)

	r.Get("/api/seller/products", apiHandlers.handleSellerListProducts)
	r.Post("/api/seller/products", apiHandlers.handleSellerCreateProduct)
	r.Patch("/api/seller/products/{productID}", apiHandlers.handleSellerUpdateProduct)
	r.Delete("/api/seller/products/{productID}", apiHandlers.handleSellerDeleteProduct)
	r.Post("/api/seller/products/{productID}/submit", apiHandlers.handleSellerSubmitProduct)

	r.Patch("/api/superuser/users/{userID}/flags", apiHandlers.handleSuperuserUpdateFlags)
	r.Patch("/api/superuser/moderation/products/{productID}", apiHandlers.handleSuperuserModerateProduct)
	r.Post("/api/superuser/products/{productID}/feature", apiHandlers.handleSuperuserFeatureProduct)
	r.Get("/api/superuser/analytics", apiHandlers.handleSuperuserAnalytics)
	r.Get("/api/superuser/audit", apiHandlers.handleSuperuserAuditLog)

	r.Patch("/api/ceo/superusers/{userID}", apiHandlers.handleCEOUpdateSuperuser)

	// Retired endpoints (/api/make-me-ceo, /api/db-direct) deliberately have
	// no handlers; the gate answers for those prefixes.

	return r, nil
}
