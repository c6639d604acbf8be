package peek

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/Aleph-Alpha/peek/v1/requestctx"
	"github.com/Aleph-Alpha/peek/v1/tracer"
)

// Middleware scopes every request handled by next to a request id.
//
// The id is taken from the configured request id header, else from the
// active trace, else generated. It is echoed in the response header and
// available to views and Record through the request context. When Enabled
// is false the middleware passes requests through untouched.
//
// Requests arriving with the same header value write into the same
// measurement bucket. Set Config.IgnoreRequestIDHeader unless the header is
// set by a trusted proxy.
func (p *Peek) Middleware(next http.Handler) http.Handler {
	if !p.Enabled() {
		return next
	}

	header := p.cfg.RequestIDHeader
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if !p.cfg.IgnoreRequestIDHeader {
			id = requestctx.FromRequest(r, header)
		}
		if id == "" {
			id = tracer.TraceID(r.Context())
		}
		if id == "" {
			id = uuid.NewString()
		}

		ctx := p.BeforeRequest(r.Context(), id)
		defer p.AfterRequest(ctx)

		w.Header().Set(header, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ResultsHandler serves the snapshot of the request id given in the
// configured header, or in the "request_id" query parameter, as JSON.
func (p *Peek) ResultsHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !p.Enabled() {
			http.NotFound(w, r)
			return
		}

		id := r.URL.Query().Get("request_id")
		if id == "" {
			id = requestctx.FromRequest(r, p.cfg.RequestIDHeader)
		}
		if id == "" {
			http.Error(w, ErrNoRequestID.Error(), http.StatusBadRequest)
			return
		}

		results, err := p.Results(p.BeforeRequest(r.Context(), id))
		if err != nil {
			http.Error(w, "failed to build results", http.StatusInternalServerError)
			return
		}
		body, err := results.MarshalJSON()
		if err != nil {
			http.Error(w, "failed to encode results", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	})
}
