// Package backend serves the protected admin namespace. Every route
// passes through the auth gate middleware, which resolves the caller's
// identity from the session cookie; handlers still demand the identity
// explicitly before doing privileged work.
package backend

import (
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/lwestrich/papershelf/core"
)

const sessionCookie = "admin_session"
const sessionMaxAge = 4 * time.Hour

// context carries the per-request identity and is threaded through every
// handler.
type context struct {
	Prefix  string // with trailing slash
	User    *core.AdminUser
	Message string
	Error   string

	db            *core.CoreDB
	cookieSecure  bool
	writer        http.ResponseWriter
	request       *http.Request
	statusWritten bool
}

func (ctx *context) LoggedIn() bool {
	return ctx.User != nil
}

// RequireAdmin returns the attached identity or refuses. The gate only
// attaches, it does not refuse on behalf of allow-listed paths.
func (ctx *context) RequireAdmin() (*core.AdminUser, error) {
	if ctx.User == nil {
		return nil, core.ErrUnauthorized
	}
	return ctx.User, nil
}

// SeeOther sets the HTTP header to redirect to an URL.
func (ctx *context) SeeOther(url string) {
	if ctx.statusWritten {
		return
	}
	http.Redirect(ctx.writer, ctx.request, url, http.StatusSeeOther)
	ctx.statusWritten = true
}

// middleware is the auth gate. The per-request identity starts out as
// "none" and is attached only if the cookie carries a valid token whose
// subject still is an admin in the user store. Requests without an
// identity never reach a handler that is not public.
func middleware(db *core.CoreDB, prefix string, cookieSecure bool, public bool, f func(http.ResponseWriter, *http.Request, *context, httprouter.Params) error) httprouter.Handle {
	return func(w http.ResponseWriter, req *http.Request, params httprouter.Params) {

		var ctx = &context{
			Prefix:       prefix,
			db:           db,
			cookieSecure: cookieSecure,
			writer:       w,
			request:      req,
		}

		if cookie, err := req.Cookie(sessionCookie); err == nil {
			if claims, err := db.Sessions.Validate(cookie.Value, sessionMaxAge); err == nil && claims.Role == core.RoleAdmin {
				if id, err := core.ParseID(claims.Subject); err == nil {
					// GetAdmin re-checks the stored role, so a downgrade
					// after token issuance locks the user out
					if user, err := db.GetAdmin(id); err == nil {
						ctx.User = user
					}
				}
			}
		}

		if !public && ctx.User == nil {
			ctx.SeeOther("/login")
			return
		}

		if err := f(w, req, ctx, params); err != nil {
			httpError(w, ctx, err)
		}
	}
}

func httpError(w http.ResponseWriter, ctx *context, err error) {

	if ctx.statusWritten {
		return
	}
	ctx.statusWritten = true

	var ve core.ValidationError
	switch {
	case errors.Is(err, core.ErrNotFound):
		http.NotFound(w, ctx.request)
		return
	case errors.Is(err, core.ErrUnauthorized):
		w.WriteHeader(http.StatusUnauthorized)
	case errors.As(err, &ve):
		w.WriteHeader(http.StatusBadRequest)
	default:
		w.WriteHeader(http.StatusInternalServerError)
	}

	errorTmpl.Execute(w, struct {
		*context
		Err error
	}{
		context: ctx,
		Err:     err,
	})
}

var errorTmpl = tmpl(`
	<div class="alert alert-danger" role="alert">
		{{ .Err }}
	</div>`)

// NewRouter returns the handler for the admin namespace. It expects to be
// mounted under prefix (e.g. "/admin/") with the prefix stripped from the
// request path, see util.HandlePrefix.
func NewRouter(db *core.CoreDB, prefix string, cookieSecure bool) http.Handler {

	var router = httprouter.New()

	var GETAndPOST = func(path string, handle httprouter.Handle) {
		router.GET(path, handle)
		router.POST(path, handle)
	}

	// allow-listed within the protected namespace
	GETAndPOST("/login", middleware(db, prefix, cookieSecure, true, login))

	// protected
	router.GET("/", middleware(db, prefix, cookieSecure, false, root))
	router.GET("/dashboard", middleware(db, prefix, cookieSecure, false, dashboard))
	router.GET("/logout", middleware(db, prefix, cookieSecure, false, logout))
	router.GET("/view/:id", middleware(db, prefix, cookieSecure, false, view))
	router.GET("/edit/:id", middleware(db, prefix, cookieSecure, false, editForm))
	router.POST("/upload-article", middleware(db, prefix, cookieSecure, false, uploadArticle))
	router.POST("/edit-article", middleware(db, prefix, cookieSecure, false, editArticle))
	router.POST("/approve-article", middleware(db, prefix, cookieSecure, false, approveArticle))
	router.POST("/delete-article", middleware(db, prefix, cookieSecure, false, deleteArticle))

	return router
}

func root(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {
	ctx.SeeOther("/dashboard")
	return nil
}

func tmpl(text string) *template.Template {
	t := template.Must(backendTmpl.Clone())
	t = template.Must(t.Parse(`{{ define "content" }}` + text + `{{ end }}`))
	return t
}

func FormatTs(ts int64) string {
	return time.Unix(ts, 0).UTC().Format("Jan 02, 2006 15:04 UTC")
}

var backendTmpl = template.Must(template.New("backend").Funcs(
	template.FuncMap{
		"FormatTs": FormatTs,
	},
).Parse(`
<!DOCTYPE html>
<html>
	<head>
		<base href="{{ .Prefix }}">
		<meta charset="utf-8">
		<title>Papershelf</title>

		<style>

			body {
				font-family: sans-serif;
				margin: 2rem auto;
				max-width: 60rem;
				padding: 0 1rem;
			}

			table {
				border-collapse: collapse;
				width: 100%;
			}

			td, th {
				border-bottom: 1px solid #dee2e6;
				padding: .4rem;
				text-align: left;
			}

			.alert {
				border: 1px solid transparent;
				border-radius: .2rem;
				margin: .5rem 0;
				padding: .5rem .8rem;
			}

			.alert-danger {
				background-color: #f8d7da;
			}

			.alert-success {
				background-color: #d4edda;
			}

			nav a {
				margin-right: 1rem;
			}

			textarea {
				width: 100%;
			}

		</style>
	</head>
	<body>

		{{ if .LoggedIn }}
			<nav>
				<a href="dashboard">Dashboard</a>
				<a href="/" target="_blank">View site</a>
				<span>{{ .User.Mail }}</span>
				<a href="logout">Logout</a>
			</nav>
		{{ end }}

		{{ with .Error }}<div class="alert alert-danger" role="alert">{{ . }}</div>{{ end }}
		{{ with .Message }}<div class="alert alert-success" role="alert">{{ . }}</div>{{ end }}

		{{ template "content" . }}
	</body>
</html>`))
