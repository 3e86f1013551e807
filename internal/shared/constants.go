package shared

import "time"

// HTTP Server Configuration
const (
	DefaultPort            = 8080
	DefaultRequestTimeout  = 30 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	ModelProbeTimeout      = 10 * time.Second
)

// Model Server Configuration
const (
	DefaultModelHTTPTimeout = 30 * time.Second
	DefaultModelName        = "nutrition_stat"
)

// API Configuration
const (
	DefaultRecommendations = 5
	RequestIDLength        = 28
	RequestIDAlphabet      = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// Rate Limit Configuration, a zero limit disables limiting
const (
	DefaultRateLimit     = 0
	DefaultRateBurst     = 40
	RateLimiterExpiresIn = 3 * time.Minute
)

// History Configuration
const (
	DefaultHistoryPath     = "data.json"
	DefaultHistoryRedisKey = "nutristat:history"
	RedisTxMaxRetries      = 10
)

// ENDPOINTS are the route paths used as metric and log labels.
var ENDPOINTS = struct {
	PREDICT         string
	RECOMMENDATIONS string
	DATA            string
	DATA_BY_ID      string
	MCP             string
}{
	PREDICT:         "/predict",
	RECOMMENDATIONS: "/recommendations",
	DATA:            "/data",
	DATA_BY_ID:      "/data/:id",
	MCP:             "/mcp",
}
