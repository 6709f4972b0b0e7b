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
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AleutianAI/AleutianForensics/services/forensic/bst"
	"github.com/AleutianAI/AleutianForensics/services/forensic/loader"
)

// DefaultMaxBodyBytes caps request bodies when Handlers is built without one.
const DefaultMaxBodyBytes int64 = 32 << 20

// Handlers contains the HTTP handlers for the forensic service.
type Handlers struct {
	svc          *Service
	maxBodyBytes int64
}

// NewHandlers creates handlers for the given service.
func NewHandlers(svc *Service) *Handlers {
	return &Handlers{svc: svc, maxBodyBytes: DefaultMaxBodyBytes}
}

// WithMaxBodyBytes sets the request body limit. Non-positive values are ignored.
func (h *Handlers) WithMaxBodyBytes(n int64) *Handlers {
	if n > 0 {
		h.maxBodyBytes = n
	}
	return h
}

// HandleAnalyze handles POST /v1/forensic/analyze.
//
// Description:
//
//	Runs one analysis. A text/plain body is read as the dataset file
//	format; any other body must be an AnalyzeRequest.
//
// Request Body:
//
//	AnalyzeRequest, or the raw file format with Content-Type text/plain
//
// Response:
//
//	200 OK: Report
//	400 Bad Request: Malformed or invalid dataset
//	413 Request Entity Too Large: Body or dataset over the limit
//	500 Internal Server Error: Processing error
func (h *Handlers) HandleAnalyze(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleAnalyze")

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)
	ctx := c.Request.Context()

	var (
		report *Report
		err    error
	)
	if c.ContentType() == "text/plain" {
		report, err = h.svc.AnalyzeText(ctx, c.Request.Body)
	} else {
		var req AnalyzeRequest
		if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(bindErr, &tooLarge) {
				err = bindErr
			} else {
				logger.Warn("Invalid request body", "error", bindErr)
				c.JSON(http.StatusBadRequest, ErrorResponse{
					Error: "Invalid request body",
					Code:  "INVALID_REQUEST",
				})
				return
			}
		} else {
			report, err = h.analyzeRequest(c, &req)
		}
	}

	if err != nil {
		status, code := classifyError(err)
		if status >= http.StatusInternalServerError {
			logger.Error("Analysis failed", "error", err)
		} else {
			logger.Warn("Analysis rejected", "error", err, "code", code)
		}
		c.JSON(status, ErrorResponse{
			Error: err.Error(),
			Code:  code,
		})
		return
	}

	logger.Info("Analysis served",
		"run_id", report.RunID,
		"total", report.Total,
		"flagged", report.Flagged)
	c.JSON(http.StatusOK, report)
}

func (h *Handlers) analyzeRequest(c *gin.Context, req *AnalyzeRequest) (*Report, error) {
	hasRaw := strings.TrimSpace(req.Raw) != ""
	switch {
	case hasRaw && req.Dataset != nil:
		return nil, ErrAmbiguousRequest
	case hasRaw:
		return h.svc.AnalyzeText(c.Request.Context(), strings.NewReader(req.Raw))
	case req.Dataset != nil:
		return h.svc.Analyze(c.Request.Context(), req.Dataset)
	default:
		return nil, ErrEmptyRequest
	}
}

// classifyError maps service errors to an HTTP status and error code.
func classifyError(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE"
	case errors.Is(err, ErrTooManyPeople):
		return http.StatusRequestEntityTooLarge, "TOO_MANY_PEOPLE"
	case errors.Is(err, loader.ErrMalformedInput):
		return http.StatusBadRequest, "MALFORMED_INPUT"
	case errors.Is(err, loader.ErrInvalidInput):
		return http.StatusBadRequest, "INVALID_INPUT"
	case errors.Is(err, bst.ErrDuplicateKey):
		return http.StatusBadRequest, "DUPLICATE_NAME"
	case errors.Is(err, ErrEmptyRequest), errors.Is(err, ErrAmbiguousRequest), errors.Is(err, ErrNilDataset):
		return http.StatusBadRequest, "INVALID_REQUEST"
	default:
		return http.StatusInternalServerError, "ANALYSIS_FAILED"
	}
}

// HandleHealth handles GET /v1/forensic/health.
//
// Description:
//
//	Returns the health status of the service. Always returns 200 if running.
//
// Response:
//
//	200 OK: HealthResponse
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:   "healthy",
		Version:  ServiceVersion,
		Analyses: h.svc.Analyses(),
	})
}

// getOrCreateRequestID returns the X-Request-ID header or a new UUID, and
// echoes it on the response.
func getOrCreateRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	return requestID
}
