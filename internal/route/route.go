// Package route moves the client between its screens: login, registration,
// project list and chat.
package route

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// View identifies a screen
type View string

const (
	Login    View = "login"
	Register View = "register"
	Projects View = "projects"
	Chat     View = "chat"
)

// Navigator receives "go to this screen" signals from components
type Navigator interface {
	Navigate(View)
}

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func(View)

func (f NavigatorFunc) Navigate(v View) { f(v) }

// Handler renders a view until it either navigates somewhere else or finishes.
type Handler func(ctx context.Context) error

// Router runs one view at a time. A handler that calls Navigate hands control
// to the requested view once it returns; a handler that returns without
// navigating ends the run.
type Router struct {
	mu       sync.Mutex
	handlers map[View]Handler
	next     View
	current  View
}

func NewRouter() *Router {
	return &Router{handlers: make(map[View]Handler)}
}

// Handle registers the handler for v
func (r *Router) Handle(v View, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[v] = h
}

// Navigate requests a transition to v after the current handler returns
func (r *Router) Navigate(v View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next = v
}

// Current returns the view being run
func (r *Router) Current() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Run starts at view start and follows navigations until a handler returns
// without navigating, a handler fails, or ctx is cancelled.
func (r *Router) Run(ctx context.Context, start View) error {
	view := start
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		r.mu.Lock()
		h, ok := r.handlers[view]
		r.current = view
		r.next = ""
		r.mu.Unlock()
		if !ok {
			return fmt.Errorf("no handler for view %q", view)
		}

		slog.Debug("entering view", slog.String("view", string(view)))
		if err := h(ctx); err != nil {
			return fmt.Errorf("view %s: %w", view, err)
		}

		r.mu.Lock()
		next := r.next
		r.mu.Unlock()
		if next == "" {
			return nil
		}
		view = next
	}
}
