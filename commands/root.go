package commands

import (
	"github.com/alecthomas/kong"
)

type CLI struct {
	Color   string `help:"Color output: auto, always, never." enum:"auto,always,never" default:"auto"`
	EnvFile string `help:"Environment file loaded before reading configuration." name:"env-file" default:".env" type:"path"`
	Verbose bool   `help:"Enable debug logging."`

	VersionFlag kong.VersionFlag `name:"version" help:"Print version."`

	Serve     ServeCmd     `cmd:"" default:"1" help:"Run the HTTP API."`
	SeedAdmin SeedAdminCmd `cmd:"" name:"seed-admin" help:"Create or promote an administrator account."`
	Import    ImportCmd    `cmd:"" help:"Import job records from a file or URL."`
	Version   VersionCmd   `cmd:"" help:"Print version."`
}

func NewCLI() *CLI {
	return &CLI{}
}
