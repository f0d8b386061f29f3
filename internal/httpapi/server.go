// Package httpapi exposes the chat and ingestion services over HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lodestar/internal/chat"
	"lodestar/internal/ingest"
	"lodestar/internal/logging"
	"lodestar/internal/rag"
)

const maxUploadBytes = 32 << 20

// Server routes API requests to the chat service and the ingestion
// pipeline.
type Server struct {
	chat    *chat.Service
	ingest  *ingest.Pipeline
	router  *mux.Router
	metrics *metrics
	log     *slog.Logger
}

// New builds a Server and registers its routes. reg may be a fresh registry
// or prometheus.DefaultRegisterer.
func New(chatSvc *chat.Service, pipeline *ingest.Pipeline, reg prometheus.Registerer) *Server {
	s := &Server{
		chat:    chatSvc,
		ingest:  pipeline,
		router:  mux.NewRouter(),
		metrics: newMetrics(reg),
		log:     logging.New("httpapi"),
	}

	s.router.HandleFunc("/api/chat", s.handleChat).Methods(http.MethodPost)
	s.router.HandleFunc("/api/upload", s.handleUpload).Methods(http.MethodPost)
	s.router.HandleFunc("/api/history/{session}", s.handleHistory).Methods(http.MethodGet)
	s.router.HandleFunc("/api/history/{session}", s.handleReset).Methods(http.MethodDelete)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	var g prometheus.Gatherer = prometheus.DefaultGatherer
	if pg, ok := reg.(prometheus.Gatherer); ok {
		g = pg
	}
	s.router.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
}

type chatResponse struct {
	SessionID   string   `json:"session_id"`
	Answer      string   `json:"answer"`
	Confidence  float64  `json:"confidence"`
	Suggestions []string `json:"suggestions,omitempty"`
	MissingInfo []string `json:"missing_info,omitempty"`
	Exhausted   bool     `json:"exhausted"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "chat", http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if req.Question == "" {
		s.writeError(w, "chat", http.StatusBadRequest, errors.New("question is required"))
		return
	}
	if req.SessionID == "" {
		req.SessionID = chat.NewSessionID()
	}

	res, err := s.chat.Ask(r.Context(), req.SessionID, req.Question)
	if err != nil {
		s.writeError(w, "chat", http.StatusBadGateway, err)
		return
	}

	s.metrics.questionDuration.Observe(time.Since(start).Seconds())
	if res.Exhausted() {
		s.metrics.runsExhausted.Inc()
	}

	s.writeJSON(w, "chat", http.StatusOK, chatResponse{
		SessionID:   req.SessionID,
		Answer:      res.Answer,
		Confidence:  res.Confidence,
		Suggestions: res.Suggestions,
		MissingInfo: res.MissingInfo,
		Exhausted:   res.Exhausted(),
	})
}

type uploadRequest struct {
	Source string `json:"source"`
	Text   string `json:"text"`
}

type uploadResponse struct {
	Source string `json:"source"`
	Chunks int    `json:"chunks"`
}

// handleUpload accepts either a multipart file upload or a JSON body with
// raw text.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	var source, text string

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			s.writeError(w, "upload", http.StatusBadRequest, fmt.Errorf("parse form: %w", err))
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			s.writeError(w, "upload", http.StatusBadRequest, fmt.Errorf("file field: %w", err))
			return
		}
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
		if err != nil {
			s.writeError(w, "upload", http.StatusBadRequest, fmt.Errorf("read file: %w", err))
			return
		}
		source, text = header.Filename, string(data)
	} else {
		var req uploadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, "upload", http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
			return
		}
		source, text = req.Source, req.Text
	}

	if text == "" {
		s.writeError(w, "upload", http.StatusBadRequest, errors.New("no content to ingest"))
		return
	}
	if source == "" {
		source = "upload"
	}

	n, err := s.ingest.IngestText(r.Context(), source, text)
	if err != nil {
		s.writeError(w, "upload", http.StatusBadGateway, err)
		return
	}
	s.metrics.chunksIngested.Add(float64(n))
	s.writeJSON(w, "upload", http.StatusOK, uploadResponse{Source: source, Chunks: n})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	session := mux.Vars(r)["session"]
	transcript, err := s.chat.Transcript(r.Context(), session)
	if err != nil {
		s.writeError(w, "history", http.StatusBadGateway, err)
		return
	}
	if transcript == nil {
		transcript = []rag.Message{}
	}
	s.writeJSON(w, "history", http.StatusOK, transcript)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	session := mux.Vars(r)["session"]
	if err := s.chat.Reset(r.Context(), session); err != nil {
		s.writeError(w, "history", http.StatusBadGateway, err)
		return
	}
	s.metrics.requestsTotal.WithLabelValues("history", strconv.Itoa(http.StatusNoContent)).Inc()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, "healthz", http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, endpoint string, status int, body any) {
	s.metrics.requestsTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error("encode response", "endpoint", endpoint, "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, endpoint string, status int, err error) {
	s.log.Warn("request failed", "endpoint", endpoint, "status", status, "error", err)
	s.metrics.requestsTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
