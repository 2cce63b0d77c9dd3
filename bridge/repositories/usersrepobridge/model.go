package usersrepobridge

import "github.com/jrazmi/tasklists/core/repositories/usersrepo"

// CredentialsForm is posted by the register, login and account update pages.
type CredentialsForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

func (f CredentialsForm) toNewUser() usersrepo.NewUser {
	return usersrepo.NewUser{Username: f.Username, Password: f.Password}
}

func (f CredentialsForm) toUpdateUser() usersrepo.UpdateUser {
	return usersrepo.UpdateUser{Username: f.Username, Password: f.Password}
}

// values returns the fields that are safe to echo back into a form.
func (f CredentialsForm) values() map[string]string {
	return map[string]string{"username": f.Username}
}
