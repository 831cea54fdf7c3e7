package main

import (
	"bufio"
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"go.uber.org/zap"

	"github.com/unkn0wn-root/bechflip"
	asynchook "github.com/unkn0wn-root/bechflip/hooks/async"
	zaplog "github.com/unkn0wn-root/bechflip/log/zap"
	"github.com/unkn0wn-root/bechflip/provider"
	bigcacheprovider "github.com/unkn0wn-root/bechflip/provider/bigcache"
	ristrettoprovider "github.com/unkn0wn-root/bechflip/provider/ristretto"
	"github.com/unkn0wn-root/bechflip/sloghooks"
)

type canonCmd struct {
	Input string `arg:"" help:"Human address or arbitrary text."`
}

func (c *canonCmd) Run(rt *runtime) error {
	out, err := rt.tr.Canonicalize(c.Input)
	if err != nil {
		return err
	}
	return rt.emit(record{Op: "canon", Input: c.Input, Canonical: out})
}

type humanCmd struct {
	Input string `arg:"" help:"Canonical bytes as hex (or as text with --text)."`
	Text  bool   `help:"Treat the argument as raw canonical text instead of hex."`
}

func (c *humanCmd) Run(rt *runtime) error {
	raw, err := c.bytes()
	if err != nil {
		return err
	}
	out, err := rt.tr.Humanize(raw)
	if err != nil {
		return err
	}
	return rt.emit(record{Op: "human", Input: c.Input, Human: out, Canonical: raw})
}

func (c *humanCmd) bytes() ([]byte, error) {
	if c.Text {
		return []byte(c.Input), nil
	}
	b, err := hex.DecodeString(c.Input)
	if err != nil {
		return nil, fmt.Errorf("human: %w", err)
	}
	return b, nil
}

type validateCmd struct {
	Input string `arg:"" help:"Address to check."`
}

func (c *validateCmd) Run(rt *runtime) error {
	out, err := rt.tr.Validate(c.Input)
	if err != nil {
		return err
	}
	return rt.emit(record{Op: "validate", Input: c.Input, Human: out})
}

type makeCmd struct {
	Label string `arg:"" help:"Label to derive the address from."`
}

func (c *makeCmd) Run(rt *runtime) error {
	out, err := rt.tr.Make(c.Label)
	if err != nil {
		return err
	}
	return rt.emit(record{Op: "make", Input: c.Label, Human: out})
}

type batchCmd struct {
	Mode string `arg:"" enum:"canon,human" help:"canon: lines are human input. human: lines are canonical hex."`
}

// maxLine bounds a single stdin line.
const maxLine = 1 << 20

func (c *batchCmd) Run(rt *runtime) error {
	ctx := context.Background()
	conv, closeFn, err := rt.converter(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	sc := bufio.NewScanner(rt.in)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)

	var lines, failed int
	for sc.Scan() {
		lines++
		line := sc.Text()
		rec, err := c.convert(ctx, conv, line)
		if err != nil {
			failed++
			rec.Error = err.Error()
			rt.log.Debug("batch line failed", zap.Int("line", lines), zap.Error(err))
		}
		if err := rt.emit(rec); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("batch: %w", err)
	}

	rt.log.Info("batch done", zap.Int("lines", lines), zap.Int("failed", failed))
	if failed > 0 {
		return fmt.Errorf("batch: %d of %d lines failed", failed, lines)
	}
	return nil
}

func (c *batchCmd) convert(ctx context.Context, conv converter, line string) (record, error) {
	rec := record{Op: c.Mode, Input: line}
	if c.Mode == "canon" {
		out, err := conv.Canonicalize(ctx, line)
		rec.Canonical = out
		return rec, err
	}
	raw, err := hex.DecodeString(line)
	if err != nil {
		return rec, err
	}
	rec.Canonical = raw
	rec.Human, err = conv.Humanize(ctx, raw)
	return rec, err
}

// converter is satisfied by *bechflip.Memo and by direct.
type converter interface {
	Canonicalize(ctx context.Context, input string) ([]byte, error)
	Humanize(ctx context.Context, canonical []byte) (string, error)
}

type direct struct{ t *bechflip.Transcoder }

func (d direct) Canonicalize(_ context.Context, input string) ([]byte, error) {
	return d.t.Canonicalize(input)
}

func (d direct) Humanize(_ context.Context, canonical []byte) (string, error) {
	return d.t.Humanize(canonical)
}

// converter returns the memoized transcoder configured under cache, or the
// bare one when cache.provider is "none".
func (rt *runtime) converter(ctx context.Context) (converter, func(), error) {
	cc := rt.cfg.Cache
	var (
		p   provider.Provider
		err error
	)
	switch cc.Provider {
	case "ristretto":
		rc := ristrettoprovider.DefaultConfig(cc.MaxItems)
		rc.SyncWrites = true
		p, err = ristrettoprovider.New(rc)
	case "bigcache":
		life := cc.TTL
		if life <= 0 {
			life = 10 * time.Minute
		}
		p, err = bigcacheprovider.New(ctx, bigcacheprovider.Config{
			LifeWindow:         life,
			MaxEntriesInWindow: int(cc.MaxItems),
		})
	default:
		return direct{rt.tr}, func() {}, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("cache: %w", err)
	}

	opts := bechflip.MemoOptions{
		Namespace: cc.Namespace,
		Provider:  p,
		Logger:    zaplog.New(rt.log),
		TTL:       cc.TTL,
	}
	var hooks *asynchook.Hooks
	if rt.verbose {
		raw := sloghooks.New(slog.New(slog.NewTextHandler(rt.errOut, nil)), sloghooks.Options{SelfHealEvery: 10})
		hooks = asynchook.New(raw, 1, 256)
		opts.Hooks = hooks
	}

	memo, err := bechflip.NewMemo(rt.tr, opts)
	if err != nil {
		_ = p.Close(ctx)
		return nil, nil, err
	}
	rt.log.Debug("memo enabled", zap.String("provider", cc.Provider), zap.String("namespace", cc.Namespace))

	return memo, func() {
		if err := memo.Close(ctx); err != nil {
			rt.log.Warn("memo close", zap.Error(err))
		}
		if hooks != nil {
			hooks.Close()
			if n := hooks.Dropped(); n > 0 {
				rt.log.Warn("hook events dropped", zap.Uint64("dropped", n))
			}
		}
	}, nil
}
