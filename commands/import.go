package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"jobsy-backend/services"
)

type ImportCmd struct {
	File       string `help:"JSON or JSON5 file with a jobs array." type:"existingfile" xor:"source"`
	URL        string `name:"url" help:"URL returning a jobs array." xor:"source"`
	AdminEmail string `name:"admin-email" help:"Administrator recorded as creator. Defaults to ADMIN_EMAIL."`
}

func (i *ImportCmd) Run(ctx *Context) error {
	if i.File == "" && i.URL == "" {
		return errors.New("one of --file or --url is required")
	}
	email := firstNonEmpty(i.AdminEmail, ctx.Config.AdminEmail)
	if email == "" {
		return errors.New("an admin email is required (--admin-email or ADMIN_EMAIL)")
	}

	db, closeDB, err := ctx.openDatabase()
	if err != nil {
		return err
	}
	defer closeDB()

	bg := context.Background()
	userStore := services.NewUserStore(db)
	admin, err := userStore.FindByEmail(bg, email)
	if err != nil {
		return fmt.Errorf("load %s: %w", email, err)
	}
	if !admin.IsAdmin {
		return fmt.Errorf("%s: %w", email, services.ErrForbidden)
	}

	catalog := services.NewCatalog(db, ctx.Logger)
	importer := services.NewImporter(catalog, ctx.Config.ImportFetchTimeout, ctx.Logger)

	var result services.ImportResult
	if i.File != "" {
		records, err := readRecordFile(i.File)
		if err != nil {
			return err
		}
		result = importer.ImportRecords(bg, records, admin.ID)
	} else {
		result, err = importer.ImportFromURL(bg, i.URL, admin.ID)
		if err != nil {
			return err
		}
	}

	ctx.UI.Successf("imported %d, skipped %d, failed %d", result.SuccessCount, result.SkippedCount, result.FailureCount)
	for _, e := range result.Errors {
		ctx.UI.Warnf("record %d (%s): %s", e.Index, e.Record, e.Error)
	}
	return nil
}

func readRecordFile(path string) ([]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return services.ParseRecordFile(data)
}
