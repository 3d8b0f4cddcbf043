package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/lwestrich/papershelf/core"
)

type articleJSON struct {
	ID               string  `json:"id"`
	Title            string  `json:"title"`
	Author           string  `json:"author"`
	Abstract         string  `json:"abstract"`
	Body             string  `json:"body"`
	Approved         bool    `json:"approved"`
	CreatedAt        *string `json:"created_at"`
	CreatedAtDisplay string  `json:"created_at_display"`
	PDFFileID        *string `json:"pdf_file_id"`
	PDFURL           string  `json:"pdf_url"`
}

func serializeArticle(a core.Article) articleJSON {

	result := articleJSON{
		ID:       strconv.Itoa(a.ID),
		Title:    a.Title,
		Author:   a.Author,
		Abstract: a.Abstract,
		Body:     a.Body,
		Approved: a.Approved,
		PDFURL:   "#",
	}

	if a.Created != 0 {
		created := time.Unix(a.Created, 0).UTC()
		iso := created.Format(time.RFC3339)
		result.CreatedAt = &iso
		result.CreatedAtDisplay = created.Format("Jan 02, 2006 15:04 UTC")
	}

	if a.BlobID != "" {
		blobID := a.BlobID
		result.PDFFileID = &blobID
		result.PDFURL = "/pdf/" + blobID
	}

	return result
}

func listArticles(db *core.CoreDB) httprouter.Handle {
	return func(w http.ResponseWriter, req *http.Request, params httprouter.Params) {

		articles, err := db.GetApprovedArticles()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		result := make([]articleJSON, 0, len(articles))
		for _, a := range articles {
			result = append(result, serializeArticle(a))
		}

		writeJSON(w, http.StatusOK, result)
	}
}
