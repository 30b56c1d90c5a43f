package adapter

import (
	"io"
	"net/http"

	engine "github.com/graphmount/graphmount/internal/engine"
)

// Handler adapts the core into an http.Handler for the net/http family of
// hosts (standalone listener, chi, mux, and gin via its wrapper). It applies
// CORS before engine invocation and enforces the body size limit while
// reading.
func (c *Core) Handler() http.Handler {
	return http.HandlerFunc(c.serveHTTP)
}

func (c *Core) serveHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		applyCORS(w, r, c.opt.CORS)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		writeResponse(w, Response{
			Status: http.StatusMethodNotAllowed,
			Body:   c.marshal(&engine.Result{Errors: []engine.Error{{Message: "method not allowed", Kind: engine.KindMalformed}}}),
		})
		return
	}

	applyCORS(w, r, c.opt.CORS)

	var body []byte
	if r.Method == http.MethodPost {
		reader := io.Reader(r.Body)
		if c.opt.MaxBodyBytes > 0 {
			reader = io.LimitReader(r.Body, c.opt.MaxBodyBytes+1)
		}
		b, err := io.ReadAll(reader)
		if err != nil {
			writeResponse(w, Response{
				Status: http.StatusBadRequest,
				Body:   c.marshal(&engine.Result{Errors: []engine.Error{{Message: "failed to read body", Kind: engine.KindMalformed}}}),
			})
			return
		}
		defer r.Body.Close()
		body = b
	}

	raw := RawRequest{
		Method:      r.Method,
		Path:        r.URL.Path,
		ContentType: r.Header.Get("Content-Type"),
		Query:       r.URL.Query(),
		Header:      r.Header,
		Body:        body,
	}
	writeResponse(w, c.Process(r.Context(), raw))
}

func writeResponse(w http.ResponseWriter, resp Response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(resp.Status)
	_, _ = w.Write(resp.Body)
}
