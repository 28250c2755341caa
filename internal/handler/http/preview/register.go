package preview

import "net/http"

// Register registers the preview route with mux.
func Register(mux *http.ServeMux, svc Previewer, exposeDetail bool) {
	mux.Handle("POST /preview", Handler{Svc: svc, ExposeDetail: exposeDetail})
}
