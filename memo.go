package bechflip

import (
	"bytes"
	"context"
	"errors"
	"time"

	c "github.com/unkn0wn-root/bechflip/codec"
	"github.com/unkn0wn-root/bechflip/internal/util"
	"github.com/unkn0wn-root/bechflip/internal/wire"
	pr "github.com/unkn0wn-root/bechflip/provider"
)

const defaultMemoTTL = time.Hour

// Entry is the memoized value: the exact input and the transcoder's output
// for it. Input is kept so hash collisions on the storage key are detected.
type Entry struct {
	Input  []byte `json:"input" msgpack:"i" cbor:"1,keyasint"`
	Output []byte `json:"output" msgpack:"o" cbor:"2,keyasint"`
}

type SetCostFunc func(key string, raw []byte) int64

// MemoOptions tune a Memo. Namespace and Provider are required.
type MemoOptions struct {
	Namespace string // logical namespace, e.g. "app:juno"
	Provider  pr.Provider

	Codec          c.Codec[Entry] // nil => codec.Msgpack[Entry]
	Logger         Logger         // nil => NopLogger
	Hooks          Hooks          // nil => NopHooks
	TTL            time.Duration  // 0 => 1h
	ComputeSetCost SetCostFunc    // default 1
	Disabled       bool           // pass every call straight to the Transcoder
}

// Memo memoizes Canonicalize and Humanize results in a byte Provider.
//
// Entries carry a fingerprint of the transcoder configuration (prefix pair,
// variant and codec limits), so a Provider shared between differently
// configured Memos never serves a foreign result. Errors are not memoized.
type Memo struct {
	t        *Transcoder
	ns       string
	provider pr.Provider
	codec    c.Codec[Entry]
	log      Logger
	hooks    Hooks
	ttl      time.Duration
	cost     SetCostFunc
	fp       uint64
	enabled  bool
}

func NewMemo(t *Transcoder, opts MemoOptions) (*Memo, error) {
	if t == nil {
		return nil, errors.New("bechflip: transcoder is required")
	}
	if opts.Provider == nil {
		return nil, errors.New("bechflip: provider is required")
	}
	if opts.Namespace == "" {
		return nil, errors.New("bechflip: namespace is required")
	}

	m := &Memo{
		t:        t,
		ns:       opts.Namespace,
		provider: opts.Provider,
		codec:    opts.Codec,
		enabled:  !opts.Disabled,
		fp:       t.fingerprint(),
	}
	if m.codec == nil {
		m.codec = c.Msgpack[Entry]{}
	}
	m.log = coalesce[Logger](opts.Logger, NopLogger{})
	m.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	m.ttl = coalesce(opts.TTL, defaultMemoTTL)
	if opts.ComputeSetCost != nil {
		m.cost = opts.ComputeSetCost
	} else {
		m.cost = func(string, []byte) int64 { return 1 }
	}
	return m, nil
}

func (m *Memo) Transcoder() *Transcoder { return m.t }
func (m *Memo) Enabled() bool           { return m.enabled }

func (m *Memo) Close(ctx context.Context) error {
	return m.provider.Close(ctx)
}

// Canonicalize is Transcoder.Canonicalize with memoization.
func (m *Memo) Canonicalize(ctx context.Context, input string) ([]byte, error) {
	if !m.enabled {
		return m.t.Canonicalize(input)
	}
	in := []byte(input)
	if out, ok := m.lookup(ctx, wire.KindCanonical, in); ok {
		return out, nil
	}
	out, err := m.t.Canonicalize(input)
	if err != nil {
		return nil, err
	}
	m.store(ctx, wire.KindCanonical, in, out)
	return out, nil
}

// Humanize is Transcoder.Humanize with memoization.
func (m *Memo) Humanize(ctx context.Context, canonical []byte) (string, error) {
	if !m.enabled {
		return m.t.Humanize(canonical)
	}
	if out, ok := m.lookup(ctx, wire.KindHuman, canonical); ok {
		return string(out), nil
	}
	out, err := m.t.Humanize(canonical)
	if err != nil {
		return "", err
	}
	m.store(ctx, wire.KindHuman, canonical, []byte(out))
	return out, nil
}

// Forget drops the memoized results for input in both directions.
func (m *Memo) Forget(ctx context.Context, input []byte) error {
	if !m.enabled {
		return nil
	}
	var errs []error
	for _, kind := range []byte{wire.KindCanonical, wire.KindHuman} {
		if err := m.provider.Del(ctx, m.key(kind, input)); err != nil {
			m.hooks.ProviderError("del", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Memo) key(kind byte, input []byte) string {
	name := "canon"
	if kind == wire.KindHuman {
		name = "human"
	}
	return util.Key(name, m.ns, input)
}

func (m *Memo) lookup(ctx context.Context, kind byte, input []byte) ([]byte, bool) {
	k := m.key(kind, input)
	raw, ok, err := m.provider.Get(ctx, k)
	if err != nil {
		m.log.Warn("memo get failed", Fields{"key": k, "err": err})
		m.hooks.ProviderError("get", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	gotKind, fp, payload, err := wire.DecodeEntry(raw)
	switch {
	case err != nil:
		m.heal(ctx, k, "corrupt")
		return nil, false
	case gotKind != kind:
		m.heal(ctx, k, "kind_mismatch")
		return nil, false
	case fp != m.fp:
		m.heal(ctx, k, "config_mismatch")
		return nil, false
	}

	e, err := m.codec.Decode(payload)
	if err != nil {
		m.heal(ctx, k, "value_decode")
		return nil, false
	}
	if !bytes.Equal(e.Input, input) {
		// key collision; the next store overwrites it
		m.log.Debug("memo key collision", Fields{"key": k})
		return nil, false
	}
	return e.Output, true
}

func (m *Memo) store(ctx context.Context, kind byte, input, output []byte) {
	k := m.key(kind, input)
	payload, err := m.codec.Encode(Entry{Input: input, Output: output})
	if err != nil {
		m.log.Warn("memo encode failed", Fields{"key": k, "err": err})
		return
	}
	raw := wire.EncodeEntry(kind, m.fp, payload)
	ok, err := m.provider.Set(ctx, k, raw, m.cost(k, raw), m.ttl)
	if err != nil {
		m.log.Warn("memo set failed", Fields{"key": k, "err": err})
		m.hooks.ProviderError("set", err)
		return
	}
	if !ok {
		m.log.Debug("memo set rejected by provider (pressure)", Fields{"key": k})
		m.hooks.ProviderSetRejected(k)
	}
}

func (m *Memo) heal(ctx context.Context, k, reason string) {
	if err := m.provider.Del(ctx, k); err != nil {
		m.hooks.ProviderError("del", err)
	}
	m.hooks.SelfHeal(k, reason)
	m.log.Debug("memo entry dropped", Fields{"key": k, "reason": reason})
}
