// Package config loads the bechflip CLI configuration from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/unkn0wn-root/bechflip"
	"github.com/unkn0wn-root/bechflip/checksum"
)

// Config mirrors the YAML file:
//
//	prefix: juno
//	variant: bech32
//	format: text
//	max_payload: 256
//	cache:
//	  provider: ristretto
//	  namespace: cli
//	  max_items: 100000
//	  ttl: 10m
type Config struct {
	Prefix     string `yaml:"prefix"`
	Variant    string `yaml:"variant"`
	Format     string `yaml:"format"`
	MaxPayload int    `yaml:"max_payload"`
	Cache      Cache  `yaml:"cache"`
}

type Cache struct {
	Provider  string        `yaml:"provider"` // none | ristretto | bigcache
	Namespace string        `yaml:"namespace"`
	MaxItems  int64         `yaml:"max_items"`
	TTL       time.Duration `yaml:"ttl"`
}

var Formats = []string{"text", "hex", "json", "cbor", "msgpack", "proto", "raw"}

func Default() Config {
	return Config{
		Prefix:  bechflip.DefaultPrefix,
		Variant: checksum.Bech32.String(),
		Format:  "text",
		Cache: Cache{
			Provider:  "none",
			Namespace: "cli",
			MaxItems:  1 << 16,
			TTL:       10 * time.Minute,
		},
	}
}

// Load reads path over Default(). Unknown keys are an error.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return Parse(b)
}

func Parse(b []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := checksum.ParseVariant(c.Variant); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if !contains(Formats, c.Format) {
		return fmt.Errorf("config: unknown format %q", c.Format)
	}
	if c.MaxPayload < 0 {
		return errors.New("config: max_payload must not be negative")
	}
	switch c.Cache.Provider {
	case "none", "ristretto", "bigcache":
	default:
		return fmt.Errorf("config: unknown cache provider %q", c.Cache.Provider)
	}
	if c.Cache.Provider != "none" {
		if c.Cache.Namespace == "" {
			return errors.New("config: cache.namespace is required")
		}
		if c.Cache.MaxItems <= 0 {
			return errors.New("config: cache.max_items must be positive")
		}
	}
	if c.Cache.TTL < 0 {
		return errors.New("config: cache.ttl must not be negative")
	}
	return nil
}

// Transcoder builds the transcoder described by c.
func (c Config) Transcoder() (*bechflip.Transcoder, error) {
	v, err := checksum.ParseVariant(c.Variant)
	if err != nil {
		return nil, err
	}
	var codec checksum.Codec = checksum.Bech32Codec{}
	if c.MaxPayload > 0 {
		codec = checksum.Limit{Inner: codec, MaxPayload: c.MaxPayload}
	}
	return bechflip.NewWithOptions(bechflip.Options{Prefix: c.Prefix, Variant: v, Codec: codec})
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
