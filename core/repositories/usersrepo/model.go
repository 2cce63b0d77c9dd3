package usersrepo

// User is an account. PasswordHash holds the bcrypt digest, never plaintext.
type User struct {
	ID           int64  `db:"id"`
	Username     string `db:"username"`
	PasswordHash string `db:"password"`
}

// NewUser contains the fields submitted at registration.
type NewUser struct {
	Username string
	Password string
}

// UpdateUser contains the replacement username and password for an account.
// The password is always re-hashed.
type UpdateUser struct {
	Username string
	Password string
}
