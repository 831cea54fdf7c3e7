// Command bechflip converts addresses between their human and canonical forms.
//
//	bechflip --prefix juno canon shorty
//	bechflip --prefix juno --format hex canon shorty
//	bechflip --prefix juno human --text "$(bechflip --prefix juno canon shorty)"
//	printf 'a\nb\n' | bechflip --config bechflip.yaml batch canon
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"github.com/unkn0wn-root/bechflip"
	"github.com/unkn0wn-root/bechflip/internal/config"
)

type cli struct {
	Config  string `short:"c" type:"existingfile" help:"YAML config file."`
	Prefix  string `help:"Public prefix (overrides config)."`
	Variant string `help:"Checksum variant: bech32 or bech32m (overrides config)."`
	Format  string `short:"f" help:"Output format: text, hex, json, cbor, msgpack, proto or raw (overrides config)."`
	Verbose bool   `short:"v" help:"Log to stderr."`

	Canon    canonCmd    `cmd:"" help:"Canonicalize a human address."`
	Human    humanCmd    `cmd:"" help:"Humanize canonical bytes."`
	Validate validateCmd `cmd:"" help:"Check that an address is in normalized human form."`
	Make     makeCmd     `cmd:"" help:"Derive a deterministic address from a label."`
	Batch    batchCmd    `cmd:"" help:"Convert stdin line by line."`
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr, os.Exit); err != nil {
		fmt.Fprintln(os.Stderr, "bechflip:", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer, exit func(int)) error {
	var c cli
	parser, err := kong.New(&c,
		kong.Name("bechflip"),
		kong.Description("Prefix-flip bech32 address transcoder."),
		kong.Writers(stdout, stderr),
		kong.Exit(exit),
		kong.UsageOnError(),
	)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	rt, err := newRuntime(&c, stdin, stdout, stderr)
	if err != nil {
		return err
	}
	defer rt.close()
	return kctx.Run(rt)
}

// runtime is bound into every command's Run method.
type runtime struct {
	cfg     config.Config
	tr      *bechflip.Transcoder
	log     *zap.Logger
	in      io.Reader
	out     io.Writer
	errOut  io.Writer
	format  string
	verbose bool
}

func newRuntime(c *cli, stdin io.Reader, stdout, stderr io.Writer) (*runtime, error) {
	cfg := config.Default()
	if c.Config != "" {
		var err error
		if cfg, err = config.Load(c.Config); err != nil {
			return nil, err
		}
	}
	if c.Prefix != "" {
		cfg.Prefix = c.Prefix
	}
	if c.Variant != "" {
		cfg.Variant = c.Variant
	}
	if c.Format != "" {
		cfg.Format = c.Format
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tr, err := cfg.Transcoder()
	if err != nil {
		return nil, err
	}

	log := zap.NewNop()
	if c.Verbose {
		if log, err = zap.NewDevelopment(); err != nil {
			return nil, err
		}
	}
	log.Debug("transcoder ready",
		zap.String("prefix", tr.Prefix()),
		zap.String("internal", tr.InternalPrefix()),
		zap.Stringer("variant", tr.Variant()),
	)

	return &runtime{
		cfg:     cfg,
		tr:      tr,
		log:     log,
		in:      stdin,
		out:     stdout,
		errOut:  stderr,
		format:  cfg.Format,
		verbose: c.Verbose,
	}, nil
}

func (rt *runtime) close() {
	_ = rt.log.Sync()
}
