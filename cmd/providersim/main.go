// providersim is a local stand-in for Twilio and SendGrid. Point
// TWILIO_BASE_URL and SENDGRID_BASE_URL at it to exercise the real
// adapter code paths without live credentials.
package main

import (
	"context"
	"fmt"
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

// Simulator fakes both providers with a shared delivery rate and a
// random per-request latency.
type Simulator struct {
	deliveryRate float64
	minDelay     time.Duration
	maxDelay     time.Duration
	instanceID   string
	rng          *rand.Rand
}

func NewSimulator(deliveryRate float64, minDelay, maxDelay time.Duration) *Simulator {
	return &Simulator{
		deliveryRate: deliveryRate,
		minDelay:     minDelay,
		maxDelay:     maxDelay,
		instanceID:   "PROVIDERSIM_" + uuid.New().String()[:8],
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *Simulator) randomDelay() time.Duration {
	if s.maxDelay <= s.minDelay {
		return s.minDelay
	}
	delta := s.maxDelay - s.minDelay
	return s.minDelay + time.Duration(s.rng.Int63n(int64(delta)))
}

func (s *Simulator) shouldDeliver() bool {
	return s.rng.Float64() < s.deliveryRate
}

type twilioMessageResponse struct {
	SID          string  `json:"sid"`
	To           string  `json:"to"`
	From         string  `json:"from"`
	Status       string  `json:"status"`
	ErrorCode    *int    `json:"error_code"`
	ErrorMessage *string `json:"error_message"`
}

// SendTwilioMessage mimics POST /2010-04-01/Accounts/{sid}/Messages.json.
func (s *Simulator) SendTwilioMessage(c *gin.Context) {
	to := c.PostForm("To")
	from := c.PostForm("From")
	body := c.PostForm("Body")
	if to == "" || from == "" || body == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    21602,
			"message": "To, From and Body are required",
		})
		return
	}

	time.Sleep(s.randomDelay())

	if !s.shouldDeliver() {
		code := 30003
		msg := "Unreachable destination handset"
		log.Warn().
			Str("account_sid", c.Param("sid")).
			Str("to", to).
			Msg("simulated SMS failure")
		c.JSON(http.StatusBadRequest, twilioMessageResponse{
			SID:          "SM" + uuid.New().String()[:32],
			To:           to,
			From:         from,
			Status:       "failed",
			ErrorCode:    &code,
			ErrorMessage: &msg,
		})
		return
	}

	log.Info().
		Str("account_sid", c.Param("sid")).
		Str("to", to).
		Int("body_len", len(body)).
		Msg("simulated SMS delivered")
	c.JSON(http.StatusCreated, twilioMessageResponse{
		SID:    "SM" + uuid.New().String()[:32],
		To:     to,
		From:   from,
		Status: "queued",
	})
}

type sendGridMailRequest struct {
	Personalizations []struct {
		To []struct {
			Email string `json:"email"`
		} `json:"to"`
	} `json:"personalizations" binding:"required"`
	From struct {
		Email string `json:"email"`
	} `json:"from"`
	Subject string `json:"subject"`
}

// SendGridMail mimics POST /v3/mail/send.
func (s *Simulator) SendGridMail(c *gin.Context) {
	var req sendGridMailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"errors": []gin.H{{"message": err.Error()}},
		})
		return
	}
	if len(req.Personalizations) == 0 || len(req.Personalizations[0].To) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"errors": []gin.H{{"message": "at least one recipient is required"}},
		})
		return
	}

	time.Sleep(s.randomDelay())

	to := req.Personalizations[0].To[0].Email
	if !s.shouldDeliver() {
		log.Warn().Str("to", to).Str("subject", req.Subject).Msg("simulated email failure")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"errors": []gin.H{{"message": "simulated provider outage"}},
		})
		return
	}

	log.Info().Str("to", to).Str("subject", req.Subject).Msg("simulated email accepted")
	c.Header("X-Message-Id", uuid.New().String())
	c.Status(http.StatusAccepted)
}

func (s *Simulator) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "healthy",
		"instance_id":   s.instanceID,
		"timestamp":     time.Now(),
		"delivery_rate": s.deliveryRate,
	})
}

// UpdateConfig changes the delivery rate at runtime.
func (s *Simulator) UpdateConfig(c *gin.Context) {
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
			s.deliveryRate = *config.DeliveryRate
			log.Info().Float64("rate", *config.DeliveryRate).Msg("updated delivery rate")
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "configuration updated",
		"delivery_rate": s.deliveryRate,
	})
}

func SetupRouter(sim *Simulator) *gin.Engine {
	router := gin.Default()

	router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request processed")
	})

	// Twilio-shaped surface
	router.POST("/2010-04-01/Accounts/:sid/Messages.json", sim.SendTwilioMessage)

	// SendGrid-shaped surface
	router.POST("/v3/mail/send", sim.SendGridMail)

	router.GET("/health", sim.HealthCheck)
	router.PUT("/config", sim.UpdateConfig)

	return router
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	port := getEnv("PORT", "8081")
	deliveryRate := getEnvFloat("DELIVERY_RATE", 1)
	minDelay := getEnvDuration("MIN_DELAY", 50*time.Millisecond)
	maxDelay := getEnvDuration("MAX_DELAY", 500*time.Millisecond)

	log.Info().
		Str("port", port).
		Float64("delivery_rate", deliveryRate).
		Dur("min_delay", minDelay).
		Dur("max_delay", maxDelay).
		Msg("starting provider simulator")

	sim := NewSimulator(deliveryRate, minDelay, maxDelay)
	router := SetupRouter(sim)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}

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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
