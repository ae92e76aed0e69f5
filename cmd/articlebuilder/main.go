package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/articlebuilder/cmd/articlebuilder/commands"
	"git.home.luguber.info/inful/articlebuilder/internal/config"
	ferrors "git.home.luguber.info/inful/articlebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/articlebuilder/internal/version"
)

func newParser(cli *commands.CLI, options ...kong.Option) (*kong.Kong, error) {
	opts := []kong.Option{
		kong.Name("articlebuilder"),
		kong.Description("Render a directory of markdown articles into HTML pages and an index."),
		kong.Vars{
			"version":        version.String(),
			"config_default": config.DefaultPath,
		},
	}
	return kong.New(cli, append(opts, options...)...)
}

// run parses args and executes the selected command.
func run(args []string, options ...kong.Option) (*commands.CLI, error) {
	cli := &commands.CLI{}
	parser, err := newParser(cli, options...)
	if err != nil {
		return cli, ferrors.InternalError("failed to build command line parser").WithCause(err).Build()
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		return cli, ferrors.ValidationError("invalid command line").WithCause(err).Build()
	}
	return cli, ctx.Run(&commands.Global{Logger: slog.Default()}, cli)
}

func main() {
	cli, err := run(os.Args[1:])
	ferrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
}
