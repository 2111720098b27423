package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"jobsy-backend/commands"
	"jobsy-backend/config"
	"jobsy-backend/ui"
)

var (
	version = "dev"
	commit  = ""
)

func main() {
	cli := commands.NewCLI()
	versionString := buildVersion()

	parser, err := kong.New(cli,
		kong.Name("jobsy"),
		kong.Description("Job board API server and admin tools."),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Vars{"version": versionString},
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	kctx, err := parser.Parse(os.Args[1:])
	if err != nil {
		ui.New(os.Stdout, os.Stderr, ui.ColorAuto).Errorf("%v", err)
		os.Exit(1)
	}

	userInterface := ui.New(os.Stdout, os.Stderr, ui.NormalizeColorMode(cli.Color))

	if err := config.LoadEnvFile(cli.EnvFile); err != nil {
		userInterface.Errorf("%v", err)
		os.Exit(1)
	}
	cfg := config.Load()
	if cli.Verbose {
		cfg.LogLevel = "debug"
	}

	runCtx := &commands.Context{
		Out:     os.Stdout,
		Err:     os.Stderr,
		UI:      userInterface,
		Config:  cfg,
		Logger:  config.NewLogger(cfg.LogLevel, cfg.LogFormat),
		Version: versionString,
	}

	if err := kctx.Run(runCtx); err != nil {
		userInterface.Errorf("%v", err)
		os.Exit(1)
	}
}

func buildVersion() string {
	if commit == "" {
		return version
	}
	return fmt.Sprintf("%s (%s)", version, commit)
}
