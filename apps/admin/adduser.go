package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/campus/core"
	"github.com/trezcool/campus/core/user"
)

// addUser updates or creates an active user.User. admin grants staff and superuser status.
func (cli *commandLine) addUser(email, name, pwd string, admin bool) error {
	ctx := context.Background()

	usr, err := cli.usrSvc.GetByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) != core.ErrNotFound {
			return err
		}
		usr, err = cli.usrSvc.Create(ctx, user.NewUser{
			Email:       email,
			Name:        name,
			Password:    pwd,
			IsActive:    true,
			IsStaff:     admin,
			IsSuperuser: admin,
		})
		if err != nil {
			return err
		}
		cli.logger.Info("user created", "id", usr.ID, "email", usr.Email)
		return nil
	}

	if name == "" {
		name = usr.Name
	}
	usr, err = cli.usrSvc.Update(ctx, usr.ID, user.UpdateUser{
		Email:       usr.Email,
		Name:        name,
		Password:    pwd,
		IsActive:    true,
		IsStaff:     usr.IsStaff || admin,
		IsSuperuser: usr.IsSuperuser || admin,
	})
	if err != nil {
		return err
	}
	cli.logger.Info("user updated", "id", usr.ID, "email", usr.Email)
	return nil
}
