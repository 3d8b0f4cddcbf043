package backend

import (
	"html/template"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/lwestrich/papershelf/core"
	"gitlab.com/golang-commonmark/markdown"
)

// raw HTML in submissions is not trusted
var commonMarkParser = markdown.New(markdown.HTML(false), markdown.Linkify(true), markdown.Typographer(true), markdown.MaxNesting(10))

var viewTmpl = tmpl(`<h1>{{ .Article.Title }}</h1>

	<p>
		{{ .Article.Author }} &middot; {{ FormatTs .Article.Created }}
		&middot; {{ if .Article.Approved }}approved{{ else }}pending{{ end }}
		{{ if .Article.BlobID }}
			&middot; <a href="/pdf/{{ .Article.BlobID }}">PDF</a>
		{{ end }}
		&middot; <a href="edit/{{ .Article.ID }}">Edit</a>
	</p>

	<h2>Abstract</h2>
	{{ .Abstract }}

	<h2>Body</h2>
	{{ .Body }}`)

type viewData struct {
	*context
	Article  core.Article
	Abstract template.HTML
	Body     template.HTML
}

func view(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	if _, err := ctx.RequireAdmin(); err != nil {
		return err
	}

	id, err := core.ParseID(params.ByName("id"))
	if err != nil {
		return err
	}

	article, err := ctx.db.GetArticle(id)
	if err != nil {
		return err
	}

	return viewTmpl.Execute(w, &viewData{
		context:  ctx,
		Article:  *article,
		Abstract: template.HTML(commonMarkParser.RenderToString([]byte(article.Abstract))),
		Body:     template.HTML(commonMarkParser.RenderToString([]byte(article.Body))),
	})
}
