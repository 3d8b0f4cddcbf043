package core

// RoleAdmin is the only role this system grants access for. The data
// model permits other roles, they just never get a session.
const RoleAdmin = "admin"

// An AdminUser is an authorization principal. It is created out of band
// and read-only from the server's perspective.
type AdminUser struct {
	ID           int
	Mail         string // stored lowercase
	PasswordHash string // bcrypt
	Role         string
}

type AdminDB interface {
	// GetAdmin returns the user only if its stored role is still "admin",
	// so a role downgrade invalidates tokens issued earlier.
	GetAdmin(id int) (*AdminUser, error)
	// LoginAdmin verifies the credentials. Unknown mail, wrong password
	// and an unusable stored hash are all ErrAuth.
	LoginAdmin(mail, password string) (*AdminUser, error)
	InsertAdmin(mail, password string) (*AdminUser, error)
}
