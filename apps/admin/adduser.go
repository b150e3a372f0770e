package main

import (
	"context"
	"fmt"

	"github.com/Damian-Sonwa/Academician-hub-sub001/core"
	"github.com/Damian-Sonwa/Academician-hub-sub001/core/user"
)

// addUser creates an active user, or activates and updates the password of an existing one.
func (cli *commandLine) addUser(name, uname, email, pwd string, isAdmin bool) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	usr, err := cli.findUser(ctx, uname, email)
	switch {
	case core.IsNotFound(err):
		nu := user.NewUser{
			Name:            name,
			Username:        uname,
			Email:           email,
			Password:        pwd,
			PasswordConfirm: pwd,
		}
		if nu.Name == "" {
			nu.Name = uname
		}
		if isAdmin {
			nu.Roles = user.AllRoles
		}
		if usr, err = cli.usrSvc.Create(ctx, nu); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cli.out, "user %q created\n", usr.Username)
		return nil
	case err != nil:
		return err
	}

	if name != "" {
		usr.Name = name
	}
	if isAdmin {
		usr.Roles = user.AllRoles
	}
	usr.IsActive = true
	if _, err = cli.usrSvc.SetPassword(ctx, usr, pwd); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cli.out, "user %q updated\n", usr.Username)
	return nil
}

func (cli *commandLine) findUser(ctx context.Context, identifiers ...string) (user.User, error) {
	for _, id := range identifiers {
		if id == "" {
			continue
		}
		usr, err := cli.usrSvc.GetByUsernameOrEmail(ctx, id)
		if !core.IsNotFound(err) {
			return usr, err
		}
	}
	return user.User{}, user.ErrNotFound
}
