package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/semaphore"

	"medical-qa-service/internal/core"
	"medical-qa-service/pkg"
)

// Server bundles together the dependencies required by the HTTP handlers. It
// implements http.Handler so it can be passed to http.ListenAndServe. The
// semaphore bounds how many question pipelines execute concurrently across
// all connections.
type Server struct {
	Pipeline *core.Pipeline

	workers  *semaphore.Weighted
	upgrader websocket.Upgrader
}

// NewServer constructs a Server. maxWorkers limits concurrently executing
// pipelines; requests beyond the limit wait for a slot.
func NewServer(pipeline *core.Pipeline, maxWorkers int) *Server {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	return &Server{
		Pipeline: pipeline,
		workers:  semaphore.NewWeighted(int64(maxWorkers)),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// ServeHTTP dispatches incoming requests based on the URL path. Minimal
// routing logic is implemented here to keep dependencies light.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/v1/answers" && r.Method == http.MethodPost:
		s.handleGenerateDraftAnswer(w, r)
	case r.URL.Path == "/ws/chat" && r.Method == http.MethodGet:
		s.handleChatStream(w, r)
	case r.URL.Path == "/health" && r.Method == http.MethodGet:
		s.handleHealth(w, r)
	default:
		http.NotFound(w, r)
	}
}

// handleGenerateDraftAnswer is the unary surface: one QuestionRequest in, one
// AnswerResult out. Malformed input is the only caller-visible hard failure;
// provider-side degradation still yields a 200 with a well-formed result.
func (s *Server) handleGenerateDraftAnswer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req pkg.QuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.QuestionID == "" {
		http.Error(w, "question_id is required", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.QuestionText) == "" {
		http.Error(w, "question_text must not be empty", http.StatusBadRequest)
		return
	}

	result, err := s.run(ctx, req)
	if err != nil {
		// Only possible when the caller cancelled while waiting for a
		// worker slot; the partial result is discarded.
		http.Error(w, "request cancelled", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		log.Printf("failed to write answer for question %s: %v", req.QuestionID, err)
	}
}

// handleChatStream upgrades the connection and runs the streaming session: a
// sequence of QuestionRequest frames in, one AnswerResult frame out per
// request, strictly in arrival order. A failed question produces a fail-soft
// result and the session stays open; only a peer close or transport fault
// ends it.
func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("failed to upgrade connection: %v", err)
		return
	}
	defer conn.Close()

	for {
		var req pkg.QuestionRequest
		if err := conn.ReadJSON(&req); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				// Malformed frame: answer with an empty result so the
				// pairing stays 1:1, then keep the session open.
				if werr := conn.WriteJSON(pkg.AnswerResult{ConfidenceScore: 0.0}); werr != nil {
					return
				}
				continue
			}
			// Peer closed its send side or the transport failed; the
			// response for the previous request was already emitted, so
			// the session just completes.
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("chat stream read error: %v", err)
			}
			return
		}

		// Chat turns may arrive without an id; assign one so the echo
		// contract holds for the response.
		if req.QuestionID == "" {
			req.QuestionID = uuid.NewString()
		}

		var result pkg.AnswerResult
		if strings.TrimSpace(req.QuestionText) == "" {
			result = pkg.AnswerResult{QuestionID: req.QuestionID, ConfidenceScore: 0.0}
		} else {
			result, err = s.run(ctx, req)
			if err != nil {
				// Connection context cancelled; discard and end the session.
				return
			}
		}

		if err := conn.WriteJSON(result); err != nil {
			log.Printf("chat stream write error for question %s: %v", req.QuestionID, err)
			return
		}
	}
}

// handleHealth reports liveness. The service holds no persistent state, so
// being up is being healthy.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// run executes one question pipeline under the worker limit. The only error
// it can return is a cancelled context while waiting for a slot.
func (s *Server) run(ctx context.Context, req pkg.QuestionRequest) (pkg.AnswerResult, error) {
	if err := s.workers.Acquire(ctx, 1); err != nil {
		return pkg.AnswerResult{}, err
	}
	defer s.workers.Release(1)
	return s.Pipeline.Handle(ctx, req), nil
}
