package web

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/lwestrich/papershelf/core"
)

func servePDF(db *core.CoreDB) httprouter.Handle {
	return func(w http.ResponseWriter, req *http.Request, params httprouter.Params) {

		blobID := params.ByName("id")

		f, err := db.Blobs.Open(blobID)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				http.NotFound(w, req)
			} else {
				http.Error(w, "error opening document", http.StatusInternalServerError)
			}
			return
		}
		defer f.Close() // every exit path, including client disconnect

		filename := "article.pdf"
		if article, err := db.GetArticleByBlobID(blobID); err == nil && article.Title != "" {
			filename = article.Title + ".pdf"
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		http.ServeContent(w, req, "", time.Time{}, f)
	}
}
