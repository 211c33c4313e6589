// Package config loads the shard verifier's operating parameters: which
// field configuration to instantiate, logging verbosity, and the optional
// CPU-chip presence check. Adapted from the teacher's STARKParameters
// (protocols.STARKParameters): a flat, validated parameter struct with a
// documented default and a Validate method, here extended to also parse
// from a YAML file for the CLI entry point.
package config

import (
	"fmt"
	"math/big"
	"os"

	"gopkg.in/yaml.v3"
)

// FieldConfig names the modular arithmetic a VerifierConfig should
// instantiate: the prime modulus, extension degree, and the two constants a
// NativeConfig needs (its non-residue and canonical generator).
type FieldConfig struct {
	Modulus    string `yaml:"modulus"`
	Degree     int    `yaml:"degree"`
	NonResidue string `yaml:"non_residue"`
	Generator  string `yaml:"generator"`
}

// VerifierConfig is the shard verifier's top-level configuration, the
// counterpart of the teacher's STARKParameters.
type VerifierConfig struct {
	Field FieldConfig `yaml:"field"`

	// LogLevel is a zerolog level name (e.g. "debug", "info", "warn").
	LogLevel string `yaml:"log_level"`

	// RequireCPUChip, when set, is the chip name VerifyShard asserts is
	// present in a proof's chip_ordering before doing any other work.
	RequireCPUChip string `yaml:"require_cpu_chip"`
}

// Default returns the verifier's default configuration: the same
// Goldilocks-shaped field the teacher's protocols package favors for its
// worked examples, info-level logging, and no mandatory CPU chip.
func Default() VerifierConfig {
	return VerifierConfig{
		Field: FieldConfig{
			Modulus:    "18446744069414584321", // 2^64 - 2^32 + 1
			Degree:     2,
			NonResidue: "7",
			Generator:  "7",
		},
		LogLevel: "info",
	}
}

// Load reads a VerifierConfig from a YAML file at path, falling back to
// Default for any field the file omits.
func Load(path string) (VerifierConfig, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return VerifierConfig{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return VerifierConfig{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return VerifierConfig{}, err
	}
	return cfg, nil
}

// Validate checks the configuration is internally consistent.
func (c *VerifierConfig) Validate() error {
	if c.Field.Degree < 1 {
		return fmt.Errorf("config: field.degree must be at least 1, got %d", c.Field.Degree)
	}
	if _, ok := new(big.Int).SetString(c.Field.Modulus, 10); !ok {
		return fmt.Errorf("config: field.modulus %q is not a valid decimal integer", c.Field.Modulus)
	}
	if _, ok := new(big.Int).SetString(c.Field.NonResidue, 10); !ok {
		return fmt.Errorf("config: field.non_residue %q is not a valid decimal integer", c.Field.NonResidue)
	}
	if _, ok := new(big.Int).SetString(c.Field.Generator, 10); !ok {
		return fmt.Errorf("config: field.generator %q is not a valid decimal integer", c.Field.Generator)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic", "trace", "disabled", "":
	default:
		return fmt.Errorf("config: unrecognized log_level %q", c.LogLevel)
	}
	return nil
}

// ParseBigInt is a small helper the CLI uses to turn a FieldConfig's decimal
// strings into big.Int values when constructing a field.NativeConfig.
func ParseBigInt(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("config: %q is not a valid decimal integer", s)
	}
	return v, nil
}
