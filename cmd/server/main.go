package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/patrickohh/Game-N-Go/internal/auth"
	"github.com/patrickohh/Game-N-Go/internal/config"
	"github.com/patrickohh/Game-N-Go/internal/handler"
	"github.com/patrickohh/Game-N-Go/internal/logging"
	"github.com/patrickohh/Game-N-Go/internal/monitoring"
	"github.com/patrickohh/Game-N-Go/internal/relation"
	"github.com/patrickohh/Game-N-Go/internal/store"

	// Swagger imports
	_ "github.com/patrickohh/Game-N-Go/docs" // This is important for swag to find the generated docs

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Game-N-Go API
// @version         1.0
// @description     REST API for the Game-N-Go game-rental marketplace.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Unable to load configuration: %v", err)
	}

	logger := logging.New(cfg.LogLevel)

	db, err := store.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	verifier := auth.NewJWKSVerifier(cfg.Auth0Domain, cfg.Auth0ClientID)
	maintainer := relation.New(db)

	games := handler.NewGameHandler(db, maintainer)
	stores := handler.NewStoreHandler(db, maintainer)
	users := handler.NewUserHandler(db, cfg)

	monitoring.Init()

	router := gin.New()
	router.Use(gin.Recovery(), logging.RequestLogger(logger), monitoring.Middleware(), cors.Default())

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Operational endpoints
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/metrics", monitoring.Handler())

	// Login flow and user listing (the callback carries its own proof of
	// identity; /users is open, matching the service being replaced)
	router.GET("/login", users.Login)
	router.GET("/callback", users.Callback)
	router.GET("/logout", users.Logout)
	router.GET("/users", users.List)

	requireAuth := auth.Middleware(verifier)

	gameRoutes := router.Group("/games")
	gameRoutes.Use(requireAuth)
	{
		gameRoutes.POST("", games.Create)
		gameRoutes.GET("", games.List)
		gameRoutes.PUT("", handler.MethodNotAllowed)
		gameRoutes.PATCH("", handler.MethodNotAllowed)
		gameRoutes.DELETE("", handler.MethodNotAllowed)

		gameRoutes.GET("/:id", games.Get)
		gameRoutes.PATCH("/:id", games.Patch)
		gameRoutes.PUT("/:id", games.Put)
		gameRoutes.DELETE("/:id", games.Delete)

		gameRoutes.PUT("/:id/stores/:store_id", games.Assign)
		gameRoutes.DELETE("/:id/stores/:store_id", games.Unassign)

		gameRoutes.PUT("/:id/rent", games.Rent)
		gameRoutes.DELETE("/:id/rent", games.Return)
	}

	storeRoutes := router.Group("/stores")
	storeRoutes.Use(requireAuth)
	{
		storeRoutes.POST("", stores.Create)
		storeRoutes.GET("", stores.List)
		storeRoutes.PUT("", handler.MethodNotAllowed)
		storeRoutes.PATCH("", handler.MethodNotAllowed)
		storeRoutes.DELETE("", handler.MethodNotAllowed)

		storeRoutes.GET("/:id", stores.Get)
		storeRoutes.PATCH("/:id", stores.Patch)
		storeRoutes.PUT("/:id", stores.Put)
		storeRoutes.DELETE("/:id", stores.Delete)
	}

	logger.Infof("Server is running on %s", cfg.ServerAddr)
	logger.Fatal(router.Run(cfg.ServerAddr))
}
