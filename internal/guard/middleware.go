package guard

import "net/http"

// Middleware applies the guard to incoming requests, answering redirect
// decisions with a 303 so browsers re-issue a GET at the new location.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		target := r.URL.Path
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}

		d := g.Evaluate(target)
		if d.Action == Redirect {
			loc := d.Location
			if len(d.Query) > 0 {
				loc += "?" + d.Query.Encode()
			}
			http.Redirect(w, r, loc, http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r)
	})
}
