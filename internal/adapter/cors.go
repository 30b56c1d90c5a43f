package adapter

import "net/http"

// applyCORS writes CORS headers for the configured policy. A nil policy
// means CORS is not supported on this attachment, which is an explicit
// choice rather than an oversight.
func applyCORS(w http.ResponseWriter, r *http.Request, opts *CORSOptions) {
	for k, v := range CORSHeaders(r.Method, r.Header.Get("Origin"), r.Header.Get("Access-Control-Request-Headers"), opts) {
		if k == "Vary" {
			w.Header().Add(k, v)
			continue
		}
		w.Header().Set(k, v)
	}
}

// CORSHeaders computes the CORS response headers for a request. It is shared
// with the function adapter, which has no http.ResponseWriter to write to.
func CORSHeaders(method, origin, requestHeaders string, opts *CORSOptions) map[string]string {
	if opts == nil || len(opts.AllowedOrigins) == 0 || origin == "" {
		return nil
	}
	wildcard := false
	allowed := false
	for _, o := range opts.AllowedOrigins {
		if o == "*" {
			wildcard = true
			allowed = true
			break
		}
		if o == origin {
			allowed = true
		}
	}
	if !allowed {
		return nil
	}

	out := map[string]string{}
	if wildcard {
		out["Access-Control-Allow-Origin"] = "*"
	} else {
		out["Access-Control-Allow-Origin"] = origin
		out["Vary"] = "Origin"
	}
	if method == http.MethodOptions {
		if requestHeaders != "" {
			out["Access-Control-Allow-Headers"] = requestHeaders
		}
		out["Access-Control-Allow-Methods"] = "GET,POST,OPTIONS"
	}
	return out
}
