package backend

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/lwestrich/papershelf/core"
)

var editTmpl = tmpl(`<h1>Edit article</h1>

	<form method="post" action="edit-article">
		<input type="hidden" name="article_id" value="{{ .Article.ID }}">
		<p><input type="text" name="title" value="{{ .Article.Title }}" required style="width: 100%;"></p>
		<p><input type="text" name="author" value="{{ .Article.Author }}" required style="width: 100%;"></p>
		<p><textarea name="abstract" rows="3" required>{{ .Article.Abstract }}</textarea></p>
		<p><textarea name="body" rows="10" required>{{ .Article.Body }}</textarea></p>
		<p>
			<a href="dashboard">Cancel</a>
			<button type="submit">Save</button>
		</p>
	</form>`)

type editData struct {
	*context
	Article core.Article
}

func editForm(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

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

	return editTmpl.Execute(w, &editData{
		context: ctx,
		Article: *article,
	})
}

func editArticle(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	if _, err := ctx.RequireAdmin(); err != nil {
		return err
	}

	id, err := core.ParseID(req.PostFormValue("article_id"))
	if err != nil {
		return err
	}

	if err := ctx.db.EditArticle(
		id,
		req.PostFormValue("title"),
		req.PostFormValue("author"),
		req.PostFormValue("abstract"),
		req.PostFormValue("body"),
	); err != nil {
		return err
	}

	ctx.SeeOther("/dashboard")
	return nil
}
