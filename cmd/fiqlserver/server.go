package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"gorm.io/gorm"

	"github.com/nlstn/go-fiql"
	"github.com/nlstn/go-fiql/fiqlgorm"
	"github.com/nlstn/go-fiql/internal/observability"
)

// productColumns maps the selectors clients may filter on to columns.
var productColumns = map[string]string{
	"id":          "id",
	"name":        "name",
	"description": "description",
	"category":    "category",
	"price":       "price",
	"stock":       "stock",
	"inStock":     "in_stock",
	"releasedAt":  "released_at",
}

// server serves the development endpoints.
type server struct {
	db      *gorm.DB
	parser  *fiql.Parser
	obs     *observability.Config
	logger  *slog.Logger
	filters []fiqlgorm.Option
}

func newServer(db *gorm.DB, parser *fiql.Parser, obs *observability.Config, logger *slog.Logger) *server {
	return &server{
		db:     db,
		parser: parser,
		obs:    obs,
		logger: logger,
		filters: []fiqlgorm.Option{
			fiqlgorm.WithColumns(productColumns),
			fiqlgorm.WithValueMapper(productValue),
		},
	}
}

// productValue converts arguments to the Go type of the filtered column.
func productValue(c *fiql.Constraint) (any, error) {
	switch c.Selector() {
	case "id":
		id, err := c.UUIDArgument()
		if err != nil {
			return nil, err
		}
		return id.String(), nil
	case "price":
		return c.DecimalArgument()
	case "stock":
		return c.IntArgument()
	case "inStock":
		return c.BoolArgument()
	case "releasedAt":
		return c.TimeArgument()
	default:
		return c.Argument(), nil
	}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/parse", s.handleParse)
	mux.HandleFunc("/products", s.handleProducts)
	mux.HandleFunc("/reseed", s.handleReseed)
	return observability.HTTPMiddleware(s.obs)(mux)
}

// parseResponse is the body of a successful /parse request.
type parseResponse struct {
	Filter      string     `json:"filter"`
	Value       fiql.Value `json:"value"`
	Depth       int        `json:"depth"`
	Constraints int        `json:"constraints"`
}

// errorResponse is the body of a failed request.
type errorResponse struct {
	Error  string `json:"error"`
	Offset *int   `json:"offset,omitempty"`
}

// handleParse parses the "q" query parameter and returns its canonical and
// value forms.
func (s *server) handleParse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		s.writeError(w, r, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", r.Method))
		return
	}

	expr, err := s.parser.Parse(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, parseResponse{
		Filter:      expr.String(),
		Value:       expr.ToValue(),
		Depth:       expr.Depth(),
		Constraints: len(expr.Constraints()),
	})
}

// handleProducts lists products, optionally restricted by the "filter" query
// parameter.
func (s *server) handleProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		s.writeError(w, r, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", r.Method))
		return
	}

	ctx := r.Context()
	query := s.db.WithContext(ctx).Order("name")

	if filter := r.URL.Query().Get("filter"); filter != "" {
		expr, err := s.parser.Parse(ctx, filter)
		if err != nil {
			s.writeError(w, r, http.StatusBadRequest, err)
			return
		}
		_, span := s.obs.Tracer().StartSpan(ctx, observability.SpanFilter,
			observability.OperationAttr(observability.OpFilter))
		cond, err := fiqlgorm.Clause(expr, s.filters...)
		s.obs.Tracer().RecordError(span, err)
		span.End()
		if err != nil {
			s.writeError(w, r, http.StatusBadRequest, err)
			return
		}
		query = query.Where(cond)
	}

	var products []Product
	if err := query.Find(&products).Error; err != nil {
		s.writeError(w, r, http.StatusInternalServerError, fmt.Errorf("failed to query products: %w", err))
		return
	}

	s.obs.Metrics().RecordResultCount(ctx, int64(len(products)))
	observability.LoggerWithTrace(ctx, s.logger).Debug("Products listed",
		slog.Int(observability.LogFieldResultCount, len(products)))
	s.writeJSON(w, r, http.StatusOK, products)
}

func (s *server) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		observability.LoggerWithTrace(r.Context(), s.logger).Error("Failed to write response",
			slog.String(observability.LogFieldError, err.Error()))
	}
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	resp := errorResponse{Error: err.Error()}
	var fiqlErr *fiql.Error
	if errors.As(err, &fiqlErr) && fiqlErr.Input != "" {
		offset := fiqlErr.Offset
		resp.Offset = &offset
	}

	logger := observability.LoggerWithTrace(r.Context(), s.logger)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", slog.String("path", r.URL.Path), slog.String(observability.LogFieldError, err.Error()))
	} else {
		logger.Debug("Request rejected", slog.String("path", r.URL.Path), slog.String(observability.LogFieldError, err.Error()))
	}
	s.writeJSON(w, r, status, resp)
}
