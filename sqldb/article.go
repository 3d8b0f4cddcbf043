package sqldb

import (
	"database/sql"

	"github.com/lwestrich/papershelf/core"
)

type ArticleDB struct {
	*sql.DB
	get         *sql.Stmt
	getByBlob   *sql.Stmt
	getAll      *sql.Stmt
	getApproved *sql.Stmt
	insert      *sql.Stmt
	remove      *sql.Stmt
	setApproved *sql.Stmt
	update      *sql.Stmt
}

func NewArticleDB(db *sql.DB) *ArticleDB {

	db.Exec(
		`CREATE TABLE IF NOT EXISTS article (
			id INTEGER PRIMARY KEY,
			title text NOT NULL,
			author text NOT NULL,
			abstract text NOT NULL,
			body text NOT NULL,
			approved int(1) NOT NULL DEFAULT 0,
			ts_created int(11) NOT NULL,
			blob_id varchar(32) NOT NULL DEFAULT ''
		);`)

	var articleDB = &ArticleDB{}
	articleDB.DB = db
	articleDB.get = mustPrepare(db, "SELECT title, author, abstract, body, approved, ts_created, blob_id FROM article WHERE id = ? LIMIT 1")
	articleDB.getByBlob = mustPrepare(db, "SELECT id, title, author, abstract, body, approved, ts_created FROM article WHERE blob_id = ? LIMIT 1")
	articleDB.getAll = mustPrepare(db, "SELECT id, title, author, abstract, body, approved, ts_created, blob_id FROM article ORDER BY ts_created DESC, id DESC")
	articleDB.getApproved = mustPrepare(db, "SELECT id, title, author, abstract, body, approved, ts_created, blob_id FROM article WHERE approved = 1 ORDER BY ts_created DESC, id DESC")
	articleDB.insert = mustPrepare(db, "INSERT INTO article (title, author, abstract, body, approved, ts_created, blob_id) VALUES (?, ?, ?, ?, 0, ?, ?)")
	articleDB.remove = mustPrepare(db, "DELETE FROM article WHERE id = ?")
	articleDB.setApproved = mustPrepare(db, "UPDATE article SET approved = 1 WHERE id = ?")
	articleDB.update = mustPrepare(db, "UPDATE article SET title = ?, author = ?, abstract = ?, body = ? WHERE id = ?")
	return articleDB
}

func (db *ArticleDB) InsertArticle(a *core.Article) (int, error) {
	result, err := db.insert.Exec(a.Title, a.Author, a.Abstract, a.Body, a.Created, a.BlobID)
	if err != nil {
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	a.ID = int(id)
	return a.ID, nil
}

func (db *ArticleDB) GetArticle(id int) (*core.Article, error) {
	var a = &core.Article{ID: id}
	err := db.get.QueryRow(id).Scan(&a.Title, &a.Author, &a.Abstract, &a.Body, &a.Approved, &a.Created, &a.BlobID)
	if err == sql.ErrNoRows {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (db *ArticleDB) GetArticleByBlobID(blobID string) (*core.Article, error) {
	var a = &core.Article{BlobID: blobID}
	err := db.getByBlob.QueryRow(blobID).Scan(&a.ID, &a.Title, &a.Author, &a.Abstract, &a.Body, &a.Approved, &a.Created)
	if err == sql.ErrNoRows {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (db *ArticleDB) GetAllArticles() ([]core.Article, error) {
	return db.queryArticles(db.getAll)
}

func (db *ArticleDB) GetApprovedArticles() ([]core.Article, error) {
	return db.queryArticles(db.getApproved)
}

func (db *ArticleDB) queryArticles(stmt *sql.Stmt) ([]core.Article, error) {

	var all = []core.Article{}

	rows, err := stmt.Query()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var a core.Article
		err = rows.Scan(&a.ID, &a.Title, &a.Author, &a.Abstract, &a.Body, &a.Approved, &a.Created, &a.BlobID)
		if err != nil {
			return nil, err
		}
		all = append(all, a)
	}

	return all, rows.Err()
}

func (db *ArticleDB) UpdateArticle(id int, title, author, abstract, body string) error {
	_, err := db.update.Exec(title, author, abstract, body, id)
	return err
}

func (db *ArticleDB) SetArticleApproved(id int) error {
	_, err := db.setApproved.Exec(id)
	return err
}

func (db *ArticleDB) RemoveArticle(id int) error {
	_, err := db.remove.Exec(id)
	return err
}
