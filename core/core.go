package core

import (
	"strings"
	"time"

	"github.com/lwestrich/papershelf/session"
	"github.com/lwestrich/papershelf/upload"
)

// CoreDB bundles the stores and the session codec. All fields are wired
// by main before serving.
type CoreDB struct {
	AdminDB
	ArticleDB
	Blobs    upload.Store
	Sessions *session.Codec
}

// A Submission is an uploaded document plus its article metadata.
type Submission struct {
	Title    string
	Author   string
	Abstract string
	Body     string

	Filename    string
	ContentType string
	Data        []byte
}

// SubmitArticle validates the submission, stores the document and inserts
// the article record, in that order. If the insert fails, an orphan blob
// remains; the reverse order could leave a public record pointing at a
// document that was never stored, which is worse.
func (c *CoreDB) SubmitArticle(sub Submission) (articleID int, blobID string, err error) {

	if err := EnsurePDF(sub.ContentType); err != nil {
		return 0, "", err
	}

	filename := sub.Filename
	if filename == "" {
		filename = "article.pdf"
	}

	blobID, err = c.Blobs.Store(filename, sub.Data)
	if err != nil {
		return 0, "", err
	}

	articleID, err = c.InsertArticle(&Article{
		Title:    strings.TrimSpace(sub.Title),
		Author:   strings.TrimSpace(sub.Author),
		Abstract: strings.TrimSpace(sub.Abstract),
		Body:     strings.TrimSpace(sub.Body),
		Created:  time.Now().UTC().Unix(),
		BlobID:   blobID,
	})
	if err != nil {
		return 0, "", err
	}

	return articleID, blobID, nil
}

// DeleteArticle removes the article's blob, then its record. A crash
// between the two steps leaves a record pointing at a missing blob, which
// a later fetch reports as not found. Deleting the record first could
// leave an unreferenced blob behind forever.
func (c *CoreDB) DeleteArticle(id int) error {

	article, err := c.GetArticle(id)
	if err != nil {
		return err
	}

	if article.BlobID != "" {
		// Delete tolerates an already absent blob
		if err := c.Blobs.Delete(article.BlobID); err != nil {
			return err
		}
	}

	return c.RemoveArticle(id)
}

// ApproveArticle makes an article publicly visible. Pure metadata
// mutation, no blob interaction.
func (c *CoreDB) ApproveArticle(id int) error {
	return c.SetArticleApproved(id)
}

// EditArticle updates the text fields of an article. Approved, Created
// and BlobID are left alone.
func (c *CoreDB) EditArticle(id int, title, author, abstract, body string) error {
	return c.UpdateArticle(
		id,
		strings.TrimSpace(title),
		strings.TrimSpace(author),
		strings.TrimSpace(abstract),
		strings.TrimSpace(body),
	)
}
