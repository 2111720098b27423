package commands

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"jobsy-backend/config"
	"jobsy-backend/ui"
)

type Context struct {
	Out     io.Writer
	Err     io.Writer
	UI      *ui.UI
	Config  config.Config
	Logger  zerolog.Logger
	Version string
}

// openDatabase connects and migrates the configured store.
func (ctx *Context) openDatabase() (*gorm.DB, func(), error) {
	if ctx.Config.Database.DSN == "" {
		return nil, nil, fmt.Errorf("no database configured for driver %q", ctx.Config.Database.Driver)
	}
	db, err := config.OpenDB(ctx.Config.Database)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if err := config.Migrate(db); err != nil {
		closeDB()
		return nil, nil, err
	}
	return db, closeDB, nil
}
