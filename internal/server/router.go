package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "vaultflow/internal/docs" // Import swagger docs
	"vaultflow/internal/handlers"
	"vaultflow/internal/middleware"
)

// RouterOptions configures the HTTP surface.
type RouterOptions struct {
	PipelineAPIKey string
	CORSOrigins    []string
	// Ping reports storage health for /api/health. Nil skips the check.
	Ping func(ctx context.Context) error
}

// NewRouter builds the gin engine with every route and wraps it for CORS.
func NewRouter(app *App, opts RouterOptions) http.Handler {
	blockchainHandler := handlers.NewBlockchainHandler(app.Composer, app.Webhooks)
	vaultHandler := handlers.NewVaultHandler(app.Composer)
	transactionHandler := handlers.NewTransactionHandler(app.Transactions)
	claimHandler := handlers.NewClaimHandler(app.Claims, app.Composer)
	pipelineHandler := handlers.NewPipelineHandler(app.Transactions, app.Distribution, app.Valuation)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", healthHandler(opts.Ping))

	v1 := router.Group("/api/v1")

	// The indexer authenticates with an HMAC over the raw body, not a JWT.
	v1.POST("/blockchain/tx-webhook", blockchainHandler.TxWebhook)

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	blockchain := protected.Group("/blockchain")
	blockchain.POST("/contribute", blockchainHandler.Contribute)
	blockchain.POST("/submit", blockchainHandler.Submit)

	protected.POST("/vaults/:id/contributions", vaultHandler.CreateContribution)

	transactions := protected.Group("/transactions")
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.GET("/:id/wait", transactionHandler.WaitForTransaction)

	claims := protected.Group("/claims")
	claims.GET("", claimHandler.GetUserClaims)
	claims.POST("/:id/build", claimHandler.BuildClaim)

	pipeline := v1.Group("/pipeline")
	pipeline.Use(middleware.PipelineAuthMiddleware(opts.PipelineAPIKey))
	pipeline.POST("/vaults/:id/sync", pipelineHandler.SyncVault)
	pipeline.POST("/vaults/:id/revalue", pipelineHandler.RevalueVault)
	pipeline.POST("/proposals/:id/close", pipelineHandler.CloseProposal)

	c := cors.New(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
	})
	return c.Handler(router)
}

func healthHandler(ping func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "down"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
