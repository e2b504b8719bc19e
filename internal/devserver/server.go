// Package devserver is an in-memory implementation of the project chat
// backend API, for local development and end-to-end tests.
package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Responder produces the bot's reply to a chat message
type Responder interface {
	Reply(ctx context.Context, project Project, message string) (string, error)
}

// ResponderFunc adapts a function to Responder
type ResponderFunc func(ctx context.Context, project Project, message string) (string, error)

func (f ResponderFunc) Reply(ctx context.Context, project Project, message string) (string, error) {
	return f(ctx, project, message)
}

// EchoResponder answers every message by repeating it
var EchoResponder = ResponderFunc(func(_ context.Context, project Project, message string) (string, error) {
	return fmt.Sprintf("[%s] %s", project.Name, message), nil
})

type Options struct {
	Responder          Responder
	LoginRatePerMinute int
}

// Server holds the backend state and its HTTP handlers
type Server struct {
	state     *state
	responder Responder
	limiter   *loginLimiter
}

func New(opts Options) *Server {
	responder := opts.Responder
	if responder == nil {
		responder = EchoResponder
	}
	return &Server{
		state:     newState(),
		responder: responder,
		limiter:   newLoginLimiter(opts.LoginRatePerMinute),
	}
}

// AddUser creates an account directly, bypassing the HTTP API
func (s *Server) AddUser(name, email, password string) (int64, error) {
	return s.state.addUser(name, email, password)
}

// AddProject creates a project for userID directly, bypassing the HTTP API
func (s *Server) AddProject(userID int64, name, description string) Project {
	var desc *string
	if description != "" {
		desc = &description
	}
	return *s.state.addProject(userID, name, desc)
}

// Handler returns the HTTP handler serving the API
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(metricsMiddleware)

	r.HandleFunc("/", s.Root).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	r.HandleFunc("/auth/register", s.Register).Methods("POST")
	r.HandleFunc("/auth/login", s.Login).Methods("POST")

	r.HandleFunc("/projects", s.requireUser(s.ListProjects)).Methods("GET")
	r.HandleFunc("/projects/", s.requireUser(s.ListProjects)).Methods("GET")
	r.HandleFunc("/projects", s.requireUser(s.CreateProject)).Methods("POST")
	r.HandleFunc("/projects/", s.requireUser(s.CreateProject)).Methods("POST")
	r.HandleFunc("/projects/{id:[0-9]+}", s.requireUser(s.GetProject)).Methods("GET")
	r.HandleFunc("/projects/{id:[0-9]+}", s.requireUser(s.UpdateProject)).Methods("PUT")
	r.HandleFunc("/projects/{id:[0-9]+}", s.requireUser(s.DeleteProject)).Methods("DELETE")

	r.HandleFunc("/chat/", s.requireUser(s.Chat)).Methods("POST")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	// Wrapped outside the router so preflights reach it before method matching.
	return cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	})(r)
}

type userHandler func(w http.ResponseWriter, r *http.Request, userID int64)

// requireUser resolves the bearer token to a user before calling next
func (s *Server) requireUser(next userHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		if header == "" || !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			writeDetail(w, http.StatusForbidden, "Not authenticated")
			return
		}
		userID, ok := s.state.userForToken(token)
		if !ok {
			writeDetail(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		next(w, r, userID)
	}
}

// Root handles GET /
func (s *Server) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Chatbot Platform API is running"})
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /auth/register
func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	if req.Name == "" || !strings.Contains(req.Email, "@") || req.Password == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "name, email and password are required")
		return
	}

	id, err := s.state.addUser(req.Name, req.Email, req.Password)
	if errors.Is(err, errEmailTaken) {
		writeDetail(w, http.StatusBadRequest, "Email already exists")
		return
	}
	if err != nil {
		slog.Error("Failed to register user", "error", err)
		writeDetail(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "User registered successfully", "user_id": id})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /auth/login
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	if !s.limiter.Allow(req.Email) {
		loginThrottledTotal.Inc()
		writeDetail(w, http.StatusTooManyRequests, "Too many login attempts")
		return
	}

	token, err := s.state.login(req.Email, req.Password)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access_token": token})
}

type projectRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// ListProjects handles GET /projects
func (s *Server) ListProjects(w http.ResponseWriter, r *http.Request, userID int64) {
	writeJSON(w, http.StatusOK, s.state.listProjects(userID))
}

// CreateProject handles POST /projects/
func (s *Server) CreateProject(w http.ResponseWriter, r *http.Request, userID int64) {
	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "name is required")
		return
	}
	writeJSON(w, http.StatusOK, s.state.addProject(userID, req.Name, req.Description))
}

// GetProject handles GET /projects/{id}
func (s *Server) GetProject(w http.ResponseWriter, r *http.Request, userID int64) {
	p, err := s.state.project(userID, projectIDFromPath(r))
	if err != nil {
		writeDetail(w, http.StatusNotFound, "Project not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// UpdateProject handles PUT /projects/{id}
func (s *Server) UpdateProject(w http.ResponseWriter, r *http.Request, userID int64) {
	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "name is required")
		return
	}
	p, err := s.state.updateProject(userID, projectIDFromPath(r), req.Name, req.Description)
	if err != nil {
		writeDetail(w, http.StatusNotFound, "Project not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DeleteProject handles DELETE /projects/{id}
func (s *Server) DeleteProject(w http.ResponseWriter, r *http.Request, userID int64) {
	if err := s.state.deleteProject(userID, projectIDFromPath(r)); err != nil {
		writeDetail(w, http.StatusNotFound, "Project not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Project deleted successfully"})
}

type chatRequest struct {
	ProjectID int64  `json:"project_id"`
	Message   string `json:"message"`
}

// Chat handles POST /chat/
func (s *Server) Chat(w http.ResponseWriter, r *http.Request, userID int64) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}

	p, err := s.state.project(userID, req.ProjectID)
	if err != nil {
		writeDetail(w, http.StatusNotFound, "Project not found")
		return
	}

	reply, err := s.responder.Reply(r.Context(), p, req.Message)
	if err != nil {
		slog.Error("Responder failed", "project_id", p.ID, "error", err)
		writeDetail(w, http.StatusInternalServerError, fmt.Sprintf("Chat backend error: %v", err))
		return
	}

	chatMessagesTotal.Inc()
	writeJSON(w, http.StatusOK, map[string]string{"response": reply})
}

func projectIDFromPath(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
