package backend

import (
	"errors"
	"io"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/lwestrich/papershelf/core"
)

// readSubmission collects the article fields and the uploaded file from a
// multipart form.
func readSubmission(req *http.Request) (core.Submission, error) {

	file, header, err := req.FormFile("pdf_file")
	if err != nil {
		return core.Submission{}, core.ValidationError("missing pdf_file field")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return core.Submission{}, err
	}

	return core.Submission{
		Title:       req.PostFormValue("title"),
		Author:      req.PostFormValue("author"),
		Abstract:    req.PostFormValue("abstract"),
		Body:        req.PostFormValue("body"),
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func uploadArticle(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	if _, err := ctx.RequireAdmin(); err != nil {
		return err
	}

	sub, err := readSubmission(req)
	if err == nil {
		_, _, err = ctx.db.SubmitArticle(sub)
	}

	if err != nil {
		var ve core.ValidationError
		if errors.As(err, &ve) {
			// rejected input re-renders the dashboard with the reason
			ctx.Error = ve.Error()
			w.WriteHeader(http.StatusBadRequest)
			ctx.statusWritten = true
			return renderDashboard(w, ctx)
		}
		return err
	}

	ctx.SeeOther("/dashboard?uploaded=1")
	return nil
}

func approveArticle(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	if _, err := ctx.RequireAdmin(); err != nil {
		return err
	}

	id, err := core.ParseID(req.PostFormValue("article_id"))
	if err != nil {
		return err
	}

	if err := ctx.db.ApproveArticle(id); err != nil {
		return err
	}

	ctx.SeeOther("/dashboard")
	return nil
}

func deleteArticle(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	if _, err := ctx.RequireAdmin(); err != nil {
		return err
	}

	id, err := core.ParseID(req.PostFormValue("article_id"))
	if err != nil {
		return err
	}

	if err := ctx.db.DeleteArticle(id); err != nil {
		return err
	}

	ctx.SeeOther("/dashboard")
	return nil
}
