package handler

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RouterOptions configures the optional protections of the delete endpoint.
type RouterOptions struct {
	// JWTSecret enables bearer-token auth when non-empty.
	JWTSecret string
	// RateLimit is requests per second; zero disables limiting.
	RateLimit float64
	RateBurst int
}

// NewRouter wires the routes and middleware.
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), AccessLog(), Recovery())

	r.GET("/", h.Root)
	r.GET("/health", h.Health)

	chain := []gin.HandlerFunc{}
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		chain = append(chain, RateLimit(rate.NewLimiter(rate.Limit(opts.RateLimit), burst)))
	}
	if opts.JWTSecret != "" {
		chain = append(chain, RequireToken([]byte(opts.JWTSecret)))
	}
	chain = append(chain, h.DeleteDiscordMessage)
	r.POST("/delete-discord-message", chain...)

	return r
}
