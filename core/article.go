package core

import "mime"

// An Article is a moderated content record. BlobID references the stored
// source document, or is empty if the article has none. Approved articles
// are the only ones visible to unauthenticated consumers.
type Article struct {
	ID       int
	Title    string
	Author   string
	Abstract string
	Body     string
	Approved bool
	Created  int64 // unix timestamp, UTC
	BlobID   string
}

type ArticleDB interface {
	// InsertArticle stores a new record and returns its assigned id.
	InsertArticle(a *Article) (int, error)
	GetArticle(id int) (*Article, error)
	GetArticleByBlobID(blobID string) (*Article, error)
	// GetAllArticles returns every article, newest first.
	GetAllArticles() ([]Article, error)
	// GetApprovedArticles is the only query the public surface may use.
	GetApprovedArticles() ([]Article, error)
	// UpdateArticle modifies the text fields only. Approved, Created,
	// BlobID and ID are never touched by this path.
	UpdateArticle(id int, title, author, abstract, body string) error
	// SetArticleApproved is the only exposed mutation of Approved.
	// There is no way back to unapproved.
	SetArticleApproved(id int) error
	RemoveArticle(id int) error
}

var pdfContentTypes = map[string]bool{
	"application/pdf":   true,
	"application/x-pdf": true,
}

// EnsurePDF rejects any upload whose declared content type is not an
// accepted PDF type. It must be called before the document is stored.
func EnsurePDF(contentType string) error {
	if mediatype, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = mediatype
	}
	if !pdfContentTypes[contentType] {
		return ValidationError("only PDF files are allowed")
	}
	return nil
}
