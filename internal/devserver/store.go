package devserver

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	errEmailTaken         = errors.New("email already exists")
	errInvalidCredentials = errors.New("invalid credentials")
	errNotFound           = errors.New("project not found")
)

type user struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}

// Project is the JSON shape the backend returns for a project
type Project struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	UserID      int64     `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// state holds users, access tokens and projects in memory.
type state struct {
	mu            sync.RWMutex
	users         map[string]*user // by lower-cased email
	tokens        map[string]int64 // access token -> user id
	projects      map[int64]*Project
	nextUserID    int64
	nextProjectID int64
}

func newState() *state {
	return &state{
		users:    make(map[string]*user),
		tokens:   make(map[string]int64),
		projects: make(map[int64]*Project),
	}
}

func (s *state) addUser(name, email, password string) (int64, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(email)
	if _, ok := s.users[key]; ok {
		return 0, errEmailTaken
	}
	s.nextUserID++
	s.users[key] = &user{
		ID:           s.nextUserID,
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	return s.nextUserID, nil
}

// login checks the password and issues a new opaque access token
func (s *state) login(email, password string) (string, error) {
	s.mu.RLock()
	u, ok := s.users[strings.ToLower(email)]
	s.mu.RUnlock()
	if !ok {
		return "", errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return "", errInvalidCredentials
	}

	token := uuid.NewString()
	s.mu.Lock()
	s.tokens[token] = u.ID
	s.mu.Unlock()
	return token, nil
}

func (s *state) userForToken(token string) (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.tokens[token]
	return id, ok
}

func (s *state) addProject(userID int64, name string, description *string) *Project {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextProjectID++
	p := &Project{
		ID:          s.nextProjectID,
		Name:        name,
		Description: description,
		UserID:      userID,
		CreatedAt:   time.Now().UTC(),
	}
	s.projects[p.ID] = p
	return p
}

func (s *state) listProjects(userID int64) []Project {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Project{}
	for _, p := range s.projects {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// project returns the project only if userID owns it
func (s *state) project(userID, id int64) (Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[id]
	if !ok || p.UserID != userID {
		return Project{}, errNotFound
	}
	return *p, nil
}

func (s *state) updateProject(userID, id int64, name string, description *string) (Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[id]
	if !ok || p.UserID != userID {
		return Project{}, errNotFound
	}
	p.Name = name
	p.Description = description
	return *p, nil
}

func (s *state) deleteProject(userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[id]
	if !ok || p.UserID != userID {
		return errNotFound
	}
	delete(s.projects, id)
	return nil
}
