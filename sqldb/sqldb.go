// Package sqldb implements the core store interfaces on database/sql.
package sqldb

import (
	"database/sql"
	"strings"
)

func mustPrepare(db *sql.DB, query string) *sql.Stmt {
	stmt, err := db.Prepare(query)
	if err != nil {
		panic(err)
	}
	return stmt
}

// clean normalizes a mail address for lookup.
func clean(mail string) string {
	mail = strings.TrimSpace(mail)
	mail = strings.ToLower(mail)
	return mail
}
