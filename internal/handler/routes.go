package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/companion/spec"
)

// Handler returns a chi router serving every endpoint of s.
func Handler(s *Server) http.Handler {
	return HandlerFromMux(s, chi.NewRouter())
}

// HandlerFromMux registers the routes of s on r and returns it.
// Routes match the paths declared in openapi.yaml.
func HandlerFromMux(s *Server, r chi.Router) http.Handler {
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", serveOpenAPI)

	r.Route("/members", func(r chi.Router) {
		r.Get("/", s.ListMembers)
		r.Put("/{id}/name", s.RenameMember)
	})

	r.Get("/tab", s.GetTab)
	r.Put("/tab", s.SwitchTab)
	r.Get("/view", s.GetView)
	r.Get("/settings", s.GetSettings)
	r.Put("/settings", s.PutSettings)
	r.Get("/status", s.GetStatus)

	r.Route("/expenses", func(r chi.Router) {
		r.Get("/", s.ListExpenses)
		r.Post("/", s.CreateExpense)
		r.Get("/balances", s.GetBalances)
	})
	return r
}

func serveOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(spec.OpenAPI)
}

// pathParam binds the chi URL parameter name into dest using the simple
// style declared for path parameters in openapi.yaml.
func pathParam(r *http.Request, name string, dest any) error {
	return runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dest,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
}

// queryParam binds an optional form-style query parameter into dest.
func queryParam(r *http.Request, name string, dest any) error {
	return runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dest)
}
