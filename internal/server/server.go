package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/raysh454/phishguard/internal/assessor"
	"github.com/raysh454/phishguard/internal/extract"
	"github.com/raysh454/phishguard/internal/logging"
	"github.com/raysh454/phishguard/internal/model"
	"github.com/raysh454/phishguard/internal/urltools"
)

// RequestIDHeader carries the per-request identifier, echoed or generated.
const RequestIDHeader = "X-Request-ID"

// Server is the HTTP + WebSocket API surface for phishguard.
type Server struct {
	cfg      Config
	assessor assessor.Assessor
	router   chi.Router
	upgrader websocket.Upgrader
	logger   logging.Logger
}

// NewServer creates a Server around cfg.Assessor, building a default
// HeuristicsAssessor when none is given.
func NewServer(cfg Config) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewStdoutLogger("Server")
	}
	if cfg.MaxBatch <= 0 {
		cfg.MaxBatch = defaultMaxBatch
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = defaultReadTimeout
	}

	a := cfg.Assessor
	if a == nil {
		h, err := assessor.NewHeuristicsAssessor(assessor.DefaultConfig(), logger)
		if err != nil {
			return nil, fmt.Errorf("creating assessor: %w", err)
		}
		a = h
	}

	r := chi.NewRouter()
	s := &Server{
		cfg:      cfg,
		assessor: a,
		router:   r,
		logger:   logger.With(logging.Field{Key: "component", Value: "server"}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// TODO: restrict to configured origins once the API is exposed beyond localhost
				return true
			},
		},
	}

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.corsMiddleware)

	// CORS preflight
	r.Options("/v1/rules", s.optionsHandler("GET"))
	r.Options("/v1/evaluate/basic", s.optionsHandler("POST"))
	r.Options("/v1/evaluate/enhanced", s.optionsHandler("POST"))
	r.Options("/v1/evaluate/batch", s.optionsHandler("POST"))
	r.Options("/v1/extract", s.optionsHandler("POST"))

	r.Get("/healthz", s.handleHealth)
	r.Get("/v1/rules", s.handleRules)

	r.Post("/v1/evaluate/basic", s.handleEvaluateBasic)
	r.Post("/v1/evaluate/enhanced", s.handleEvaluateEnhanced)
	r.Post("/v1/evaluate/batch", s.handleEvaluateBatch)
	r.Post("/v1/extract", s.handleExtract)

	// Streaming evaluation
	r.Get("/ws/evaluate", s.handleEvaluateWS)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+RequestIDHeader)
		w.Header().Set("Access-Control-Expose-Headers", RequestIDHeader)
		w.Header().Set("Access-Control-Max-Age", "86400")

		next.ServeHTTP(w, r)
	})
}

func (s *Server) optionsHandler(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.Header.Get(RequestIDHeader)
	if id == "" {
		id = uuid.New().String()
		r.Header.Set(RequestIDHeader, id)
	}
	w.Header().Set(RequestIDHeader, id)

	fields := []logging.Field{
		{Key: "method", Value: r.Method},
		{Key: "path", Value: r.URL.Path},
		{Key: "request_id", Value: id},
	}
	if r.ContentLength > 0 {
		fields = append(fields, logging.Field{Key: "content_length", Value: r.ContentLength})
	}
	s.logger.Info("http_request", fields...)

	if r.Body != nil {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	}
	s.router.ServeHTTP(w, r)
}

// Close releases the assessor.
func (s *Server) Close() {
	if s.assessor != nil {
		_ = s.assessor.Close()
	}
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: 0, // allow streaming
	}
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return false
	}
	return true
}

// evaluationStatus maps evaluator errors to HTTP status codes.
func evaluationStatus(err error) int {
	if errors.Is(err, urltools.ErrInvalidInput) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func countSuspicious(items []model.BatchItem) int {
	n := 0
	for _, it := range items {
		if it.Suspicious() {
			n++
		}
	}
	return n
}

// --- HTTP handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	cfg := s.assessor.Config()
	writeJSON(w, http.StatusOK, RulesResponse{
		ScoringVersion:      cfg.ScoringVersion,
		TyposquatThreshold:  cfg.TyposquatThreshold,
		SuspiciousThreshold: cfg.SuspiciousThreshold,
		Rules:               assessor.Rules(&cfg),
		Tables:              cfg.Tables,
	})
}

func (s *Server) handleEvaluateBasic(w http.ResponseWriter, r *http.Request) {
	var body EvaluateRequest
	if !decodeBody(w, r, &body) {
		return
	}
	v, err := s.assessor.EvaluateBasic(r.Context(), body.URL)
	if err != nil {
		writeError(w, evaluationStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleEvaluateEnhanced(w http.ResponseWriter, r *http.Request) {
	var body EvaluateRequest
	if !decodeBody(w, r, &body) {
		return
	}
	a, err := s.assessor.EvaluateEnhanced(r.Context(), body.URL)
	if err != nil {
		writeError(w, evaluationStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleEvaluateBatch(w http.ResponseWriter, r *http.Request) {
	var body BatchRequest
	if !decodeBody(w, r, &body) {
		return
	}
	mode, err := model.ParseMode(body.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(body.URLs) > s.cfg.MaxBatch {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("batch of %d URLs exceeds limit of %d", len(body.URLs), s.cfg.MaxBatch))
		return
	}

	items := s.assessor.EvaluateBatch(r.Context(), body.URLs, mode)
	resp := BatchResponse{
		ID:         uuid.New().String(),
		Mode:       mode,
		Suspicious: countSuspicious(items),
		Items:      items,
	}
	s.logger.Info("evaluated batch",
		logging.Field{Key: "batch_id", Value: resp.ID},
		logging.Field{Key: "count", Value: len(items)},
		logging.Field{Key: "suspicious", Value: resp.Suspicious})
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var body ExtractRequest
	if !decodeBody(w, r, &body) {
		return
	}
	format, err := extract.ParseFormat(body.Format)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	mode, err := model.ParseMode(body.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	urls, err := extract.Extract(body.Content, format)
	if err != nil {
		s.logger.Warn("extracting urls", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(urls) > s.cfg.MaxBatch {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("document contains %d URLs, limit is %d", len(urls), s.cfg.MaxBatch))
		return
	}
	if urls == nil {
		urls = []string{}
	}

	items := s.assessor.EvaluateBatch(r.Context(), urls, mode)
	resp := ExtractResponse{
		ID:         uuid.New().String(),
		Format:     string(format),
		Mode:       mode,
		URLs:       urls,
		Suspicious: countSuspicious(items),
		Items:      items,
	}
	s.logger.Info("extracted and evaluated",
		logging.Field{Key: "batch_id", Value: resp.ID},
		logging.Field{Key: "format", Value: resp.Format},
		logging.Field{Key: "count", Value: len(urls)})
	writeJSON(w, http.StatusOK, resp)
}

// --- WebSocket ---

// handleEvaluateWS answers every {"url","mode"} frame with one result frame,
// sequentially and in order, until the client disconnects.
func (s *Server) handleEvaluateWS(w http.ResponseWriter, r *http.Request) {
	id := r.Header.Get(RequestIDHeader)
	conn, err := s.upgrader.Upgrade(w, r, http.Header{RequestIDHeader: []string{id}})
	if err != nil {
		s.logger.Warn("upgrading to websocket", logging.Field{Key: "error", Value: err.Error()})
		return
	}
	defer conn.Close()

	ctx := r.Context()
	s.logger.Info("websocket opened", logging.Field{Key: "request_id", Value: id})

	for seq := 0; ; seq++ {
		var req WSRequest
		if err := conn.ReadJSON(&req); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				if werr := conn.WriteJSON(WSResponse{Seq: seq, Error: "invalid JSON"}); werr != nil {
					return
				}
				continue
			}
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("reading websocket frame", logging.Field{Key: "error", Value: err.Error()})
			}
			s.logger.Info("websocket closed",
				logging.Field{Key: "request_id", Value: id},
				logging.Field{Key: "frames", Value: seq})
			return
		}

		resp := s.evaluateFrame(r, seq, req)
		if err := conn.WriteJSON(resp); err != nil {
			// client went away mid-write
			return
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func (s *Server) evaluateFrame(r *http.Request, seq int, req WSRequest) WSResponse {
	resp := WSResponse{Seq: seq, URL: req.URL}
	mode, err := model.ParseMode(req.Mode)
	if err != nil {
		resp.Error = err.Error()
		return resp
	}
	resp.Mode = mode

	if mode == model.ModeBasic {
		v, err := s.assessor.EvaluateBasic(r.Context(), req.URL)
		if err != nil {
			resp.Error = err.Error()
			return resp
		}
		resp.Verdict = v
		return resp
	}
	a, err := s.assessor.EvaluateEnhanced(r.Context(), req.URL)
	if err != nil {
		resp.Error = err.Error()
		return resp
	}
	resp.Assessment = a
	return resp
}
