package auth

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"itinventory/internal/metrics"
	"itinventory/internal/middleware"
	"itinventory/internal/rate_limiter"
	custom_error "itinventory/pkg/errors"
	"itinventory/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const stateCookie = "oauth_state"

type Handler struct {
	service     *Service
	rateLimiter *rate_limiter.RateLimiter
	metrics     *metrics.Metrics
}

func NewHandler(service *Service, limiter *rate_limiter.RateLimiter, m *metrics.Metrics) *Handler {
	return &Handler{service: service, rateLimiter: limiter, metrics: m}
}

func (h *Handler) RegisterRoutes(router gin.IRouter) {
	group := router.Group("/auth")
	group.POST("/sign-in", h.SignIn)
	group.POST("/sign-up", h.SignUp)
	group.POST("/password-reset", h.RequestPasswordReset)
	group.POST("/password-reset/confirm", h.ConfirmPasswordReset)
	group.GET("/oauth/:provider", h.StartOAuth)
	group.GET("/oauth/:provider/callback", h.OAuthCallback)
}

// RegisterProtectedRoutes expects the JWT middleware on router.
func (h *Handler) RegisterProtectedRoutes(router gin.IRouter) {
	router.POST("/auth/sign-out", h.SignOut)
}

type signInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type signUpRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name" binding:"max=120"`
}

type resetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type confirmResetRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) SignIn(c *gin.Context) {
	key := clientKey(c)
	if !h.rateLimiter.IsAllowed(key) {
		h.metrics.IncLoginRejected()
		remaining := h.rateLimiter.GetRemainingRequests(key)
		resetAt := h.rateLimiter.ResetAt(key).Format(time.RFC3339)
		c.Header("X-RateLimit-Limit", strconv.Itoa(h.rateLimiter.Limit()))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", resetAt)
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":     "Too many sign-in attempts. Try again later.",
			"remaining": remaining,
			"reset_at":  resetAt,
		})
		return
	}

	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	session, err := h.service.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *Handler) SignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	session, err := h.service.SignUp(c.Request.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (h *Handler) SignOut(c *gin.Context) {
	claims, ok := security.ClaimsFromContext(c)
	if !ok {
		middleware.AbortWithError(c, custom_error.New(custom_error.CodeUnauthorized, "not signed in"))
		return
	}
	if err := h.service.SignOut(c.Request.Context(), claims); err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) RequestPasswordReset(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}
	if err := h.service.SendPasswordResetEmail(c.Request.Context(), req.Email); err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "If the address is registered, a reset link is on its way."})
}

func (h *Handler) ConfirmPasswordReset(c *gin.Context) {
	var req confirmResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}
	if err := h.service.ConfirmPasswordReset(c.Request.Context(), req.Token, req.Password); err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

func (h *Handler) StartOAuth(c *gin.Context) {
	state := uuid.NewString()
	url, err := h.service.AuthCodeURL(c.Param("provider"), state)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookie, state, int((10 * time.Minute).Seconds()), "/auth/oauth", "", c.Request.TLS != nil, true)
	c.Redirect(http.StatusFound, url)
}

func (h *Handler) OAuthCallback(c *gin.Context) {
	expected, err := c.Cookie(stateCookie)
	if err != nil || expected == "" || expected != c.Query("state") {
		middleware.AbortWithError(c, custom_error.New(custom_error.CodeUnauthorized, "oauth state mismatch"))
		return
	}
	c.SetCookie(stateCookie, "", -1, "/auth/oauth", "", c.Request.TLS != nil, true)

	code := c.Query("code")
	if code == "" {
		middleware.AbortWithError(c, custom_error.New(custom_error.CodeValidation, "missing authorization code"))
		return
	}

	session, err := h.service.SignInWithProvider(c.Request.Context(), c.Param("provider"), code)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// clientKey identifies the caller for rate limiting. Callers behind a
// private address share an IP, so the user agent is mixed in.
func clientKey(c *gin.Context) string {
	clientIP := c.GetHeader("X-Forwarded-For")
	if clientIP == "" {
		clientIP = c.GetHeader("X-Real-IP")
	}
	if clientIP == "" {
		clientIP = c.ClientIP()
	}
	if strings.Contains(clientIP, ",") {
		clientIP = strings.Split(clientIP, ",")[0]
	}
	clientIP = strings.TrimSpace(clientIP)

	if isPrivateIP(clientIP) {
		clientIP = clientIP + ":" + c.GetHeader("User-Agent")
	}
	return clientIP
}

var privatePrefixes = []string{
	"10.",
	"172.16.", "172.17.", "172.18.", "172.19.",
	"172.20.", "172.21.", "172.22.", "172.23.",
	"172.24.", "172.25.", "172.26.", "172.27.",
	"172.28.", "172.29.", "172.30.", "172.31.",
	"192.168.",
	"127.",
	"169.254.",
	"::1",
	"fc00::",
	"fe80::",
}

func isPrivateIP(ip string) bool {
	for _, prefix := range privatePrefixes {
		if strings.HasPrefix(ip, prefix) {
			return true
		}
	}
	return false
}
