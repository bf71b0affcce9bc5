package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/proposal-wizard/internal/observability"
	"github.com/odyssey-erp/proposal-wizard/internal/platform/httpx"
	"github.com/odyssey-erp/proposal-wizard/internal/proposal"
)

// DefaultMaxBodyBytes caps generate request bodies.
const DefaultMaxBodyBytes int64 = 10 << 20

// Generator produces a PDF for a flat proposal document.
type Generator interface {
	Generate(ctx context.Context, doc proposal.RenderDocument) ([]byte, error)
}

// Pinger reports whether the PDF backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HandlerConfig wires a Handler.
type HandlerConfig struct {
	Generator    Generator
	Pinger       Pinger
	Logger       *slog.Logger
	Metrics      *observability.Metrics
	ServiceName  string
	MaxBodyBytes int64
}

// Handler manages proposal rendering endpoints.
type Handler struct {
	generator Generator
	pinger    Pinger
	logger    *slog.Logger
	metrics   *observability.Metrics
	service   string
	maxBody   int64
	validate  *validator.Validate
}

// NewHandler creates a report handler.
func NewHandler(cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	service := cfg.ServiceName
	if service == "" {
		service = "Proposal PDF Generator"
	}
	return &Handler{
		generator: cfg.Generator,
		pinger:    cfg.Pinger,
		logger:    logger,
		metrics:   cfg.Metrics,
		service:   service,
		maxBody:   maxBody,
		validate:  validator.New(),
	}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/ping", h.ping)
}

// Health answers liveness probes.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]string{
		"status":    "OK",
		"service":   h.service,
		"timestamp": httpx.Now(),
	})
}

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	if h.pinger == nil {
		httpx.Error(w, http.StatusServiceUnavailable, "Service Unavailable", "pdf backend not configured")
		return
	}
	if err := h.pinger.Ping(r.Context()); err != nil {
		h.logger.Warn("gotenberg ping failed", slog.Any("error", err))
		httpx.Error(w, http.StatusServiceUnavailable, "Service Unavailable", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Generate renders the posted proposal as a PDF attachment.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	doc, err := h.decodeDocument(w, r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpx.RespondError(w, err)
			return
		}
		httpx.Error(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(doc); err != nil {
		h.metrics.ObservePDFRender(observability.ResultInvalid, 0)
		httpx.JSON(w, http.StatusBadRequest, httpx.ErrorBody{
			Error:   "Missing required fields",
			Message: "offerNumber and clientName are required",
		})
		return
	}
	if h.generator == nil {
		httpx.Error(w, http.StatusInternalServerError, "PDF Generation Failed", "renderer not configured")
		return
	}

	start := time.Now()
	pdf, err := h.generator.Generate(r.Context(), doc)
	if err != nil {
		h.metrics.ObservePDFRender(observability.ResultFailure, time.Since(start))
		h.logger.Error("render proposal", slog.String("offer_number", doc.OfferNumber), slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "PDF Generation Failed", err.Error())
		return
	}
	h.metrics.ObservePDFRender(observability.ResultSuccess, time.Since(start))

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", Filename(doc.OfferNumber)))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

// decodeDocument accepts either the flat render document or a nested proposal.
func (h *Handler) decodeDocument(w http.ResponseWriter, r *http.Request) (proposal.RenderDocument, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		return proposal.RenderDocument{}, err
	}
	var probe struct {
		OfferNumber *string          `json:"offerNumber"`
		Metadata    *json.RawMessage `json:"metadata"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return proposal.RenderDocument{}, err
	}
	if probe.OfferNumber == nil && probe.Metadata != nil {
		var p proposal.Proposal
		if err := json.Unmarshal(body, &p); err != nil {
			return proposal.RenderDocument{}, err
		}
		return proposal.Flatten(&p), nil
	}
	var doc proposal.RenderDocument
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&doc); err != nil {
		return proposal.RenderDocument{}, err
	}
	doc.OfferNumber = strings.TrimSpace(doc.OfferNumber)
	doc.ClientName = strings.TrimSpace(doc.ClientName)
	return doc, nil
}

// NotFound answers unknown routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusNotFound, httpx.ErrorBody{
		Error:   "Not Found",
		Message: fmt.Sprintf("Route %s %s not found", r.Method, r.URL.Path),
	})
}

// MethodNotAllowed answers known routes hit with the wrong verb.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusMethodNotAllowed, httpx.ErrorBody{
		Error:   "Method Not Allowed",
		Message: fmt.Sprintf("Route %s %s not allowed", r.Method, r.URL.Path),
	})
}

// Filename builds the attachment name for an offer number, replacing
// characters that are unsafe in file names.
func Filename(offerNumber string) string {
	safe := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || strings.ContainsRune(`/\:*?"<>|`, r) {
			return '_'
		}
		return r
	}, offerNumber)
	return "Proposal_" + safe + ".pdf"
}
