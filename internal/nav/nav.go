// Package nav maps view paths to handlers. Unknown paths land on the
// dashboard, and a handler can hand off to another view when it finishes.
package nav

import (
	"context"
	"fmt"
	"strings"
)

type View string

const (
	Dashboard    View = "/"
	AddPeriod    View = "/add-period"
	AddOvulation View = "/add-ovulation"

	// Done ends navigation.
	Done View = ""
)

var titles = map[View]string{
	Dashboard:    "Dashboard",
	AddPeriod:    "Add Period",
	AddOvulation: "Add Ovulation",
}

const maxHops = 16

// Views lists every routable view in display order.
func Views() []View {
	return []View{Dashboard, AddPeriod, AddOvulation}
}

// Resolve returns the view for path. Anything unrecognised is the dashboard.
func Resolve(path string) View {
	p := strings.ToLower(strings.TrimSpace(path))
	if p != "/" {
		p = strings.TrimRight(p, "/")
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if _, ok := titles[View(p)]; ok {
		return View(p)
	}
	return Dashboard
}

func (v View) Title() string {
	if t, ok := titles[v]; ok {
		return t
	}
	return titles[Dashboard]
}

// Handler renders a view and returns where to go next, or Done.
type Handler func(ctx context.Context) (View, error)

type Router struct {
	routes map[View]Handler
}

func NewRouter() *Router {
	return &Router{routes: map[View]Handler{}}
}

func (r *Router) Handle(v View, h Handler) {
	r.routes[v] = h
}

// Run starts at path and follows hand-offs until a handler returns Done or
// an error.
func (r *Router) Run(ctx context.Context, path string) error {
	next := Resolve(path)
	for hop := 0; hop < maxHops; hop++ {
		h, ok := r.routes[next]
		if !ok {
			return fmt.Errorf("no handler for view %s", next)
		}
		to, err := h(ctx)
		if err != nil {
			return err
		}
		if to == Done {
			return nil
		}
		next = Resolve(string(to))
	}
	return fmt.Errorf("navigation did not settle after %d views", maxHops)
}
