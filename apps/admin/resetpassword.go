package main

import (
	"context"
)

func (cli *commandLine) resetPassword(email, pwd string) error {
	usr, err := cli.usrSvc.SetPassword(context.Background(), email, pwd)
	if err != nil {
		return err
	}
	cli.logger.Info("password reset", "id", usr.ID, "email", usr.Email)
	return nil
}
