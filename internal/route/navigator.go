package route

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
)

// Screen names a navigable screen of the shell.
type Screen string

const (
	Home    Screen = "Home"
	Gallery Screen = "Gallery"
)

var ErrUnknownScreen = errors.New("unknown screen")

// Navigator resolves screen names to the paths of their named routes.
type Navigator struct {
	router *mux.Router
}

func NewNavigator(router *mux.Router) *Navigator {
	return &Navigator{router: router}
}

// URL returns the path of a named screen.
func (n *Navigator) URL(screen Screen) (string, error) {
	route := n.router.Get(string(screen))
	if route == nil {
		return "", ErrUnknownScreen
	}
	u, err := route.URL()
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// Handler redirects /navigate/{screen} to the screen's path.
func (n *Navigator) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		url, err := n.URL(Screen(mux.Vars(r)["screen"]))
		if err != nil {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, url, http.StatusSeeOther)
	}
}
