// Package web serves the public surface: article submission, the
// approved-articles listing, document downloads and the liveness probe.
// It only ever reads through the approved-articles query.
package web

import (
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/lwestrich/papershelf/core"
)

func NewRouter(db *core.CoreDB) http.Handler {

	var router = httprouter.New()

	router.GET("/", root)
	router.GET("/health", health)
	router.GET("/upload", uploadForm)
	router.POST("/upload-article", uploadArticle(db))
	router.GET("/articles", listArticles(db))
	router.GET("/pdf/:id", servePDF(db))

	return router
}

func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

func root(w http.ResponseWriter, req *http.Request, params httprouter.Params) {
	http.Redirect(w, req, "/admin/dashboard", http.StatusSeeOther)
}

func health(w http.ResponseWriter, req *http.Request, params httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

var uploadTmpl = template.Must(template.New("upload").Parse(`<!DOCTYPE html>
<html>
	<head>
		<meta charset="utf-8">
		<title>Submit an article</title>
	</head>
	<body style="font-family: sans-serif; margin: 2rem auto; max-width: 30rem; padding: 0 1rem;">
		<h1>Submit an article</h1>
		<form method="post" action="/upload-article" enctype="multipart/form-data">
			<p><input type="text" name="title" placeholder="Title" required style="width: 100%;"></p>
			<p><input type="text" name="author" placeholder="Author" required style="width: 100%;"></p>
			<p><textarea name="abstract" placeholder="Abstract" rows="3" required style="width: 100%;"></textarea></p>
			<p><textarea name="body" placeholder="Body" rows="6" required style="width: 100%;"></textarea></p>
			<p><input type="file" name="pdf_file" accept="application/pdf" required></p>
			<p><button type="submit">Submit</button></p>
		</form>
	</body>
</html>`))

func uploadForm(w http.ResponseWriter, req *http.Request, params httprouter.Params) {
	uploadTmpl.Execute(w, nil)
}
