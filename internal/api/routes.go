package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"budget-advisor/backend/internal/ai"
	"budget-advisor/backend/internal/budget"
	"budget-advisor/backend/internal/strategy"
)

// Config defines server dependencies.
type Config struct {
	AIConfig       ai.Config
	DisableAI      bool
	Policy         budget.Policy
	StrategyEnv    string
	AllowedOrigins []string
}

// Server wires HTTP handlers with the decision policy and the completion
// advisor.
type Server struct {
	advisor        ai.Advisor
	model          string
	policy         budget.Policy
	strategyEnv    string
	allowedOrigins []string
	notifier       *RecommendationNotifier
}

// NewServer constructs the API server. A missing completion credential is not
// fatal here: the OVER path reports a configuration error per request.
func NewServer(cfg Config) (*Server, error) {
	server := &Server{
		policy:         cfg.Policy,
		strategyEnv:    cfg.StrategyEnv,
		allowedOrigins: cfg.AllowedOrigins,
		notifier:       NewRecommendationNotifier(),
	}
	if server.policy == "" {
		server.policy = budget.PolicyDeterministic
	}

	if cfg.DisableAI {
		logrus.Info("completion advisor disabled via configuration")
		return server, nil
	}

	client, err := ai.NewClient(cfg.AIConfig)
	if err != nil {
		if errors.Is(err, ai.ErrDisabled) {
			logrus.Info("completion advisor disabled - no API key configured")
			return server, nil
		}
		return nil, fmt.Errorf("ai client: %w", err)
	}
	server.advisor = client
	server.model = client.Model()
	logrus.WithFields(logrus.Fields{
		"model":  client.Model(),
		"policy": server.policy,
	}).Info("completion advisor enabled")
	return server, nil
}

// Router configures gin routes.
func (s *Server) Router() (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logrus.WithField("panic", recovered).Error("request handler panicked")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   "internal error",
			"details": fmt.Sprintf("%v", recovered),
		})
	}))
	r.Use(requestIDMiddleware())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowCredentials = true
	if len(s.allowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = s.allowedOrigins
	}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-Request-ID"}
	corsCfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	r.Use(cors.New(corsCfg))

	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Use POST"})
	})

	r.GET("/api/healthz", s.handleHealth)
	r.GET("/api/config", s.handleConfig)

	api := r.Group("/api")
	{
		api.POST("/recommend", s.handleRecommend)
		api.GET("/recommend/stream", s.handleRecommendStream)
	}

	return r, nil
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader("X-Request-ID"))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

const requestIDKey = "request_id"

func requestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleConfig(c *gin.Context) {
	strategySource := strategy.SourceDefault
	if strings.TrimSpace(s.strategyEnv) != "" {
		strategySource = strategy.SourceEnvironment
	}

	c.JSON(http.StatusOK, gin.H{
		"model":           s.model,
		"policy":          s.policy,
		"strategy_source": strategySource,
		"advisor_enabled": s.advisor != nil && s.advisor.Enabled(),
		"allowed_origins": s.allowedOrigins,
	})
}

func (s *Server) renderError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}

func (s *Server) renderUpstreamError(c *gin.Context, upstream *ai.UpstreamError) {
	c.JSON(upstream.StatusCode, gin.H{
		"error":   "completion service error",
		"status":  upstream.StatusCode,
		"details": upstream.Body,
	})
}
