package middleware

import (
	"net/http"

	"github.com/norikae/norikae/internal/api/models"
)

// writeProblem answers r with the problem for status. The response package
// imports middleware, so middleware writes problems itself.
func writeProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	models.New(status, GetRequestID(r.Context()), detail).
		WithInstance(r.URL.Path).
		Write(w)
}
