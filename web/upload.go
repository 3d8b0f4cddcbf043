package web

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/lwestrich/papershelf/core"
)

func uploadArticle(db *core.CoreDB) httprouter.Handle {
	return func(w http.ResponseWriter, req *http.Request, params httprouter.Params) {

		file, header, err := req.FormFile("pdf_file")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "missing pdf_file field"})
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			http.Error(w, "error reading upload", http.StatusInternalServerError)
			return
		}

		articleID, blobID, err := db.SubmitArticle(core.Submission{
			Title:       req.PostFormValue("title"),
			Author:      req.PostFormValue("author"),
			Abstract:    req.PostFormValue("abstract"),
			Body:        req.PostFormValue("body"),
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
		if err != nil {
			var ve core.ValidationError
			if errors.As(err, &ve) {
				writeJSON(w, http.StatusBadRequest, map[string]string{"detail": ve.Error()})
			} else {
				http.Error(w, "error storing article", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{
			"message":     "Article uploaded successfully.",
			"article_id":  strconv.Itoa(articleID),
			"pdf_file_id": blobID,
		})
	}
}
