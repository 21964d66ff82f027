package main

import (
	"os"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Debug   bool             `help:"Enable debug logging"`

	Index        IndexCmd        `cmd:"" help:"Canonical index of a hand"`
	Canonical    CanonicalCmd    `cmd:"" help:"Representative hand for a canonical index"`
	Sizes        SizesCmd        `cmd:"" help:"Isomorphism class counts per round"`
	PreflopTable PreflopTableCmd `cmd:"preflop-table" help:"Print the 169-entry starting hand table"`
	Simulate     SimulateCmd     `cmd:"" help:"Play random hands through the abstracted game"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("abstractpoker"),
		kong.Description("Canonical hand indexing and abstracted poker games"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	setupLogger(cli.Debug)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

func setupLogger(debug bool) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)
}
