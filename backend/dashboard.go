package backend

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/lwestrich/papershelf/core"
)

var dashboardTmpl = tmpl(`<h1>Dashboard</h1>

	<h2>Upload article</h2>

	<form method="post" action="upload-article" enctype="multipart/form-data" style="max-width: 30rem;">
		<p><input type="text" name="title" placeholder="Title" required style="width: 100%;"></p>
		<p><input type="text" name="author" placeholder="Author" required style="width: 100%;"></p>
		<p><textarea name="abstract" placeholder="Abstract" rows="3" required></textarea></p>
		<p><textarea name="body" placeholder="Body" rows="6" required></textarea></p>
		<p><input type="file" name="pdf_file" accept="application/pdf" required></p>
		<p><button type="submit">Upload</button></p>
	</form>

	<h2>Articles</h2>

	<table>
		<tr>
			<th>Title</th>
			<th>Author</th>
			<th>Created</th>
			<th>Status</th>
			<th></th>
		</tr>
		{{ range .Articles }}
			<tr>
				<td><a href="view/{{ .ID }}">{{ .Title }}</a></td>
				<td>{{ .Author }}</td>
				<td>{{ FormatTs .Created }}</td>
				<td>{{ if .Approved }}approved{{ else }}pending{{ end }}</td>
				<td>
					<a href="edit/{{ .ID }}">Edit</a>
					{{ if .BlobID }}
						<a href="/pdf/{{ .BlobID }}">PDF</a>
					{{ end }}
					{{ if not .Approved }}
						<form method="post" action="approve-article" style="display: inline;">
							<input type="hidden" name="article_id" value="{{ .ID }}">
							<button type="submit">Approve</button>
						</form>
					{{ end }}
					<form method="post" action="delete-article" style="display: inline;">
						<input type="hidden" name="article_id" value="{{ .ID }}">
						<button type="submit">Delete</button>
					</form>
				</td>
			</tr>
		{{ end }}
	</table>`)

type dashboardData struct {
	*context
	Articles []core.Article
}

// renderDashboard is shared with the upload handler, which re-renders the
// dashboard with an error message on rejected submissions.
func renderDashboard(w http.ResponseWriter, ctx *context) error {
	articles, err := ctx.db.GetAllArticles()
	if err != nil {
		return err
	}
	return dashboardTmpl.Execute(w, &dashboardData{
		context:  ctx,
		Articles: articles,
	})
}

func dashboard(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	if _, err := ctx.RequireAdmin(); err != nil {
		return err
	}

	if req.URL.Query().Get("uploaded") == "1" {
		ctx.Message = "Article uploaded successfully."
	}

	return renderDashboard(w, ctx)
}
