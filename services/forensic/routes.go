// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package forensic

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"

	"github.com/AleutianAI/AleutianForensics/services/forensic/telemetry"
)

// RegisterRoutes registers all forensic routes with the router.
//
// Description:
//
//	Registers all /v1/forensic/* endpoints with the given Gin router group.
//	The router group should already have any required middleware applied.
//
// Inputs:
//
//	rg - Gin router group (typically /v1)
//	handlers - The handlers instance
//
// Endpoints:
//
//	POST /v1/forensic/analyze - Run an analysis
//	GET  /v1/forensic/health - Health check
//
// Example:
//
//	service := forensic.NewService(forensic.DefaultServiceConfig(), nil)
//	handlers := forensic.NewHandlers(service)
//
//	v1 := router.Group("/v1")
//	forensic.RegisterRoutes(v1, handlers)
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	forensic := rg.Group("/forensic")
	{
		forensic.POST("/analyze", handlers.HandleAnalyze)
		forensic.GET("/health", handlers.HandleHealth)
	}
}

// RouterConfig configures NewRouter.
type RouterConfig struct {
	// ServiceName is the otelgin server name.
	ServiceName string

	// RequestsPerSecond is the sustained request rate. 0 disables limiting.
	RequestsPerSecond float64

	// Burst is the limiter bucket size.
	Burst int
}

// NewRouter builds the gin engine for the forensic API.
//
// The engine carries recovery, otelgin tracing and the rate limiter, serves
// GET /metrics from the telemetry package and mounts RegisterRoutes under /v1.
func NewRouter(cfg RouterConfig, handlers *Handlers) *gin.Engine {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "aleutian-forensic"
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.ServiceName))

	router.GET("/metrics", gin.WrapH(telemetry.MetricsHandler()))

	v1 := router.Group("/v1")
	v1.Use(RateLimit(cfg.RequestsPerSecond, cfg.Burst))
	RegisterRoutes(v1, handlers)
	return router
}

// RateLimit returns middleware that answers 429 once the shared token
// bucket is empty. rps <= 0 disables it.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
				Error: "rate limit exceeded",
				Code:  "RATE_LIMITED",
			})
			return
		}
		c.Next()
	}
}
