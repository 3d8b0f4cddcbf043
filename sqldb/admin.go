package sqldb

import (
	"database/sql"

	"github.com/lwestrich/papershelf/core"
	"golang.org/x/crypto/bcrypt"
)

type AdminDB struct {
	*sql.DB
	get    *sql.Stmt
	insert *sql.Stmt
	login  *sql.Stmt
}

func NewAdminDB(db *sql.DB) *AdminDB {

	db.Exec(
		`CREATE TABLE IF NOT EXISTS admin (
			id INTEGER PRIMARY KEY,
			mail varchar(128) NOT NULL,
			password varchar(128) NOT NULL,
			role varchar(32) NOT NULL,
			UNIQUE(mail)
		);`)

	var adminDB = &AdminDB{}
	adminDB.DB = db
	// the role is checked in the query, a downgraded user is simply gone
	adminDB.get = mustPrepare(db, "SELECT mail, password, role FROM admin WHERE id = ? AND role = 'admin' LIMIT 1")
	adminDB.insert = mustPrepare(db, "INSERT INTO admin (mail, password, role) VALUES (?, ?, ?)")
	adminDB.login = mustPrepare(db, "SELECT id, password, role FROM admin WHERE mail = ? LIMIT 1")
	return adminDB
}

func (db *AdminDB) GetAdmin(id int) (*core.AdminUser, error) {
	var u = &core.AdminUser{ID: id}
	err := db.get.QueryRow(id).Scan(&u.Mail, &u.PasswordHash, &u.Role)
	if err == sql.ErrNoRows {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (db *AdminDB) LoginAdmin(mail, password string) (*core.AdminUser, error) {

	mail = clean(mail)

	var u = &core.AdminUser{Mail: mail}

	err := db.login.QueryRow(mail).Scan(&u.ID, &u.PasswordHash, &u.Role)
	if err == sql.ErrNoRows {
		return nil, core.ErrAuth // unknown mail
	}
	if err != nil {
		return nil, err
	}

	if u.Role != core.RoleAdmin {
		return nil, core.ErrAuth
	}

	// also fails on an empty or unusable stored hash
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, core.ErrAuth // wrong password
	}

	return u, nil
}

func (db *AdminDB) InsertAdmin(mail, password string) (*core.AdminUser, error) {

	mail = clean(mail)

	if password == "" {
		return nil, core.ValidationError("refusing to set empty password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	result, err := db.insert.Exec(mail, string(hash), core.RoleAdmin)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &core.AdminUser{
		ID:           int(id),
		Mail:         mail,
		PasswordHash: string(hash),
		Role:         core.RoleAdmin,
	}, nil
}
