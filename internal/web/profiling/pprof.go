// Package profiling serves pprof endpoints. They expose runtime internals,
// so the server mounts them on a separate listener that should stay on an
// internal address.
package profiling

import (
	"net/http"
	"net/http/pprof"

	"github.com/go-chi/chi/v5"
)

// Path is the URL prefix of the profiling endpoints
const Path = "/debug/pprof"

// profiles are served by pprof.Handler
var profiles = []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"}

// Handler returns a router serving the pprof endpoints under Path
func Handler() http.Handler {
	router := chi.NewRouter()
	router.Route(Path, func(r chi.Router) {
		r.HandleFunc("/", pprof.Index)
		r.HandleFunc("/cmdline", pprof.Cmdline)
		r.HandleFunc("/profile", pprof.Profile)
		r.HandleFunc("/symbol", pprof.Symbol)
		r.HandleFunc("/trace", pprof.Trace)

		for _, name := range profiles {
			r.Handle("/"+name, pprof.Handler(name))
		}
	})
	return router
}
