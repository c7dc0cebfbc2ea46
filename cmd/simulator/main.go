package main

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// EmitRequest asks the simulator to fire vendor callbacks at the gateway.
type EmitRequest struct {
	Vendor  string `json:"vendor" binding:"required"`
	Channel string `json:"channel" binding:"required"`
	Count   int    `json:"count"`
	Status  string `json:"status"` // vendor-native status, empty picks randomly
}

// EmitResponse summarizes one emit run.
type EmitResponse struct {
	Vendor    string `json:"vendor"`
	Channel   string `json:"channel"`
	Sent      int    `json:"sent"`
	Accepted  int    `json:"accepted"`
	Rejected  int    `json:"rejected"`
	SimulatorID string `json:"simulator_id"`
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status       string    `json:"status"`
	SimulatorID  string    `json:"simulator_id"`
	Timestamp    time.Time `json:"timestamp"`
	DeliveryRate float64   `json:"delivery_rate"`
}

// Simulator emits realistic vendor webhook payloads against a running
// gateway. Payload shapes mirror what the five vendors actually send.
type Simulator struct {
	gatewayURL   string
	project      string
	token        string
	secret       string
	deliveryRate float64
	simulatorID  string
	client       *http.Client
	rng          *rand.Rand
}

func NewSimulator(gatewayURL, project, token, secret string, deliveryRate float64) *Simulator {
	return &Simulator{
		gatewayURL:   gatewayURL,
		project:      project,
		token:        token,
		secret:       secret,
		deliveryRate: deliveryRate,
		simulatorID:  "SIMULATOR_" + uuid.New().String()[:8],
		client:       &http.Client{Timeout: 10 * time.Second},
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *Simulator) pickStatus(vendor string) string {
	delivered := s.rng.Float64() < s.deliveryRate
	switch vendor {
	case "msg91":
		if delivered {
			return "delivered"
		}
		return "failed"
	case "twilio":
		if delivered {
			return "delivered"
		}
		return "undelivered"
	case "gupshup":
		if delivered {
			if s.rng.Float64() < 0.3 {
				return "read"
			}
			return "delivered"
		}
		return "failed"
	case "sendgrid":
		if delivered {
			if s.rng.Float64() < 0.3 {
				return "open"
			}
			return "delivered"
		}
		return "bounce"
	case "plivo":
		if delivered {
			return "delivered"
		}
		return "undelivered"
	}
	return "delivered"
}

func (s *Simulator) buildPayload(vendor, status string) ([]byte, string) {
	id := uuid.New().String()
	recipient := fmt.Sprintf("+1555%07d", s.rng.Intn(10_000_000))
	now := time.Now().UTC()

	switch vendor {
	case "msg91":
		return mustJSON(map[string]interface{}{
			"requestId": id,
			"eventName": status,
			"number":    recipient,
			"ts":        now.Unix(),
		}), id
	case "twilio":
		return mustJSON(map[string]interface{}{
			"MessageSid":    "SM" + id[:32],
			"MessageStatus": status,
			"To":            recipient,
			"ErrorCode":     errorCodeFor(status),
		}), id
	case "gupshup":
		return mustJSON(map[string]interface{}{
			"app":  "demo",
			"type": "message-event",
			"payload": map[string]interface{}{
				"gsId":        id,
				"type":        status,
				"destination": recipient,
				"ts":          now.UnixMilli(),
			},
		}), id
	case "sendgrid":
		return mustJSON([]map[string]interface{}{
			{
				"sg_message_id": id + ".filter001",
				"event":         status,
				"email":         fmt.Sprintf("user%d@example.com", s.rng.Intn(100000)),
				"timestamp":     now.Unix(),
				"sg_event_id":   uuid.New().String(),
			},
		}), id
	case "plivo":
		return mustJSON(map[string]interface{}{
			"MessageUUID": id,
			"Status":      status,
			"To":          recipient,
			"Timestamp":   now.Format("2006-01-02 15:04:05"),
		}), id
	}
	return mustJSON(map[string]interface{}{"id": id, "status": status}), id
}

// emitOne posts a single callback and reports whether the gateway
// accepted it.
func (s *Simulator) emitOne(vendor, channel, status string) bool {
	if status == "" {
		status = s.pickStatus(vendor)
	}
	body, id := s.buildPayload(vendor, status)

	url := fmt.Sprintf("%s/webhook/%s/%s/%s?token=%s", s.gatewayURL, s.project, vendor, channel, s.token)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		log.Error().Err(err).Msg("failed to build request")
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	if vendor == "gupshup" && s.secret != "" {
		mac := hmac.New(sha256.New, []byte(s.secret))
		mac.Write(body)
		req.Header.Set("X-Gupshup-Signature", "sha256="+hex.EncodeToString(mac.Sum(nil)))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		log.Error().Err(err).Str("vendor", vendor).Msg("gateway unreachable")
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		log.Warn().
			Str("vendor", vendor).
			Str("message_id", id).
			Int("status_code", resp.StatusCode).
			Msg("gateway rejected callback")
		return false
	}

	log.Info().
		Str("vendor", vendor).
		Str("channel", channel).
		Str("message_id", id).
		Str("status", status).
		Msg("callback accepted")
	return true
}

// Handler struct holds the simulator and routes
type Handler struct {
	sim *Simulator
}

func NewHandler(sim *Simulator) *Handler {
	return &Handler{sim: sim}
}

// Emit fires a batch of vendor callbacks
func (h *Handler) Emit(c *gin.Context) {
	var req EmitRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}
	if req.Count <= 0 {
		req.Count = 1
	}

	log.Info().
		Str("vendor", req.Vendor).
		Str("channel", req.Channel).
		Int("count", req.Count).
		Msg("Received emit request")

	resp := EmitResponse{
		Vendor:      req.Vendor,
		Channel:     req.Channel,
		Sent:        req.Count,
		SimulatorID: h.sim.simulatorID,
	}
	for i := 0; i < req.Count; i++ {
		if h.sim.emitOne(req.Vendor, req.Channel, req.Status) {
			resp.Accepted++
		} else {
			resp.Rejected++
		}
	}

	c.JSON(http.StatusOK, resp)
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:       "healthy",
		SimulatorID:  h.sim.simulatorID,
		Timestamp:    time.Now(),
		DeliveryRate: h.sim.deliveryRate,
	})
}

// UpdateConfig allows changing simulator configuration at runtime
func (h *Handler) UpdateConfig(c *gin.Context) {
	var config struct {
		DeliveryRate *float64 `json:"delivery_rate"`
	}

	if err := c.ShouldBindJSON(&config); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	if config.DeliveryRate != nil {
		if *config.DeliveryRate >= 0 && *config.DeliveryRate <= 1.0 {
			h.sim.deliveryRate = *config.DeliveryRate
			log.Info().Float64("rate", *config.DeliveryRate).Msg("Updated delivery rate")
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Configuration updated",
		"delivery_rate": h.sim.deliveryRate,
	})
}

// SetupRouter configures all routes
func SetupRouter(handler *Handler) *gin.Engine {
	router := gin.Default()

	// Add request logging middleware
	router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Msg("Request processed")
	})

	// API routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/emit", handler.Emit)
		v1.GET("/health", handler.HealthCheck)
		v1.PUT("/config", handler.UpdateConfig)
	}

	// Root health check
	router.GET("/health", handler.HealthCheck)

	return router
}

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Get configuration from environment
	port := getEnv("PORT", "8082")
	gatewayURL := getEnv("GATEWAY_URL", "http://localhost:8080")
	project := getEnv("PROJECT", "demo")
	token := getEnv("TOKEN", "")
	secret := getEnv("SECRET", "")
	deliveryRate := getEnvFloat("DELIVERY_RATE", 0.9)

	log.Info().
		Str("port", port).
		Str("gateway_url", gatewayURL).
		Str("project", project).
		Float64("delivery_rate", deliveryRate).
		Msg("Starting Vendor Webhook Simulator")

	sim := NewSimulator(gatewayURL, project, token, secret, deliveryRate)
	handler := NewHandler(sim)
	router := SetupRouter(handler)

	// Setup HTTP server
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

func mustJSON(v interface{}) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

func errorCodeFor(status string) interface{} {
	if status == "undelivered" || status == "failed" {
		return 30005
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var f float64
		if _, err := fmt.Sscanf(value, "%f", &f); err == nil {
			return f
		}
	}
	return defaultValue
}
