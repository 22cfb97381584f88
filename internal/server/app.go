package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"loveanalyzer/backend/internal/config"
)

const authRequiredMessage = "Autenticación requerida. Inicia sesión para continuar."

type App struct {
	cfg   config.Config
	store AnalysisStore
	ai    AIClient
	auth  AuthClient
}

func New(cfg config.Config, pool *pgxpool.Pool) *App {
	var auth AuthClient = NewSupabaseAuthClient(cfg)
	if strings.TrimSpace(cfg.SupabaseJWTSecret) != "" {
		auth = NewLocalTokenVerifier(cfg.SupabaseJWTSecret, auth)
	}
	return &App{
		cfg:   cfg,
		store: NewPGAnalysisStore(pool),
		ai:    NewGeminiClient(cfg),
		auth:  auth,
	}
}

func (a *App) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     a.cfg.AllowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := router.Group("/api")
	api.GET("/health", a.health)
	api.POST("/analyze", a.analyzeMessage)
	api.POST("/auth/register", a.register)
	api.POST("/auth/login", a.login)

	protected := api.Group("")
	protected.Use(a.requireAuth())
	protected.POST("/chat", a.chatFollowup)
	protected.POST("/chat/save", a.saveChatHistory)
	protected.GET("/history", a.getHistory)

	return router
}

func (a *App) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": a.cfg.AppName,
	})
}

// requireAuth rejects requests whose bearer token the auth service does not
// recognize. Verification detail never reaches the caller; every failure mode
// collapses into the same generic 401.
func (a *App) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := a.userFromRequest(c)
		if !ok {
			writeError(c, http.StatusUnauthorized, authRequiredMessage)
			return
		}
		c.Set("authUser", user)
		c.Next()
	}
}

// userFromRequest extracts and verifies the caller identity. Used both by the
// auth middleware and by the analyze handler's opportunistic save.
func (a *App) userFromRequest(c *gin.Context) (AuthUser, bool) {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return AuthUser{}, false
	}
	token := strings.TrimSpace(authHeader[len("Bearer "):])
	if token == "" {
		return AuthUser{}, false
	}

	user, err := a.auth.GetUser(c.Request.Context(), token)
	if err != nil {
		return AuthUser{}, false
	}
	return user, true
}

func authUserFromContext(c *gin.Context) (AuthUser, bool) {
	raw, ok := c.Get("authUser")
	if !ok {
		return AuthUser{}, false
	}
	user, ok := raw.(AuthUser)
	return user, ok
}

func writeError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// mustJSON binds the request body and answers the spanish "body required"
// error on any malformed or absent payload.
func mustJSON(c *gin.Context, payload any) bool {
	if err := c.ShouldBindJSON(payload); err != nil {
		writeError(c, http.StatusBadRequest, "El cuerpo de la petición es requerido.")
		return false
	}
	return true
}
