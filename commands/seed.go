package commands

import (
	"context"
	"errors"

	"jobsy-backend/services"
)

type SeedAdminCmd struct {
	Email    string `help:"Administrator email. Defaults to ADMIN_EMAIL."`
	Password string `help:"Password for a newly created account. Defaults to ADMIN_PASSWORD."`
	Name     string `help:"Display name for a newly created account. Defaults to ADMIN_NAME."`
}

func (s *SeedAdminCmd) Run(ctx *Context) error {
	email := firstNonEmpty(s.Email, ctx.Config.AdminEmail)
	password := firstNonEmpty(s.Password, ctx.Config.AdminPassword)
	name := firstNonEmpty(s.Name, ctx.Config.AdminName)
	if email == "" {
		return errors.New("an admin email is required (--email or ADMIN_EMAIL)")
	}

	db, closeDB, err := ctx.openDatabase()
	if err != nil {
		return err
	}
	defer closeDB()

	created, err := services.SeedAdmin(context.Background(), services.NewUserStore(db), email, password, name)
	if err != nil {
		return err
	}
	if created {
		ctx.UI.Successf("created admin %s", email)
	} else {
		ctx.UI.Infof("%s is an admin", email)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
