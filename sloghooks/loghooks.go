package sloghooks

import (
	"encoding/binary"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"

	"github.com/unkn0wn-root/bechflip"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	SelfHealEvery uint64
	// Optional key redactor. Storage keys embed a hash of the address, so the
	// default only shortens them.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	selfHealCtr atomic.Uint64
}

var _ bechflip.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], xxhash.Sum64String(k))
	return hex.EncodeToString(b[:4])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) SelfHeal(storageKey, reason string) {
	if h.l == nil || !sample(h.opts.SelfHealEvery, &h.selfHealCtr) {
		return
	}
	h.l.Debug("bechflip.self_heal",
		"key", h.redact(storageKey),
		"reason", reason)
}

func (h *Hooks) ProviderSetRejected(storageKey string) {
	if h.l == nil {
		return
	}
	h.l.Warn("bechflip.provider_set_rejected",
		"key", h.redact(storageKey))
}

func (h *Hooks) ProviderError(op string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("bechflip.provider_error",
		"op", op,
		"err", err)
}
