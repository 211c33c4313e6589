// Command shard-verify runs the shard verifier core against a verifying key
// and a proof read as two JSON lines from stdin — the same
// stdin-JSON-lines convention the teacher's cmd/vybium-vm-prover uses for
// its claim/program/non_determinism inputs, reused here for
// verifying_key/proof (the proof line also carries chip_ordering and
// public_values).
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vybium/shard-verifier/internal/shardverifier/air"
	"github.com/vybium/shard-verifier/internal/shardverifier/challenger"
	"github.com/vybium/shard-verifier/internal/shardverifier/config"
	"github.com/vybium/shard-verifier/internal/shardverifier/field"
	"github.com/vybium/shard-verifier/internal/shardverifier/verify"
)

var (
	configPath  string
	verboseFlag bool
)

func main() {
	root := &cobra.Command{
		Use:   "shard-verify",
		Short: "Verify a STARK shard proof read from stdin",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a verifier config YAML file (optional)")
	root.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newVerifyCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newVerifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Read verifying_key and proof JSON lines from stdin and verify",
		RunE:  runVerify,
	}
}

// stdinProof is the three-line wire format: a verifying key, the ordered
// chip names (standing in for the concrete chip registry a real deployment
// would compile in), and the shard proof itself.
type stdinVerifyingKey struct {
	Commit  []string `json:"commit"`   // DigestElements decimal strings
	PCStart string   `json:"pc_start"` // decimal string
}

type stdinProof struct {
	Commitment struct {
		Main        []string `json:"main"`
		Permutation []string `json:"permutation"`
		Quotient    []string `json:"quotient"`
	} `json:"commitment"`
	ChipOrdering map[string]int `json:"chip_ordering"`
	PublicValues []string       `json:"public_values"`
}

func runVerify(cmd *cobra.Command, args []string) error {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if verboseFlag {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	cfg := config.Default()
	if configPath != "" {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("shard-verify: %w", err)
		}
	}

	modulus, err := config.ParseBigInt(cfg.Field.Modulus)
	if err != nil {
		return err
	}
	nonResidue, err := config.ParseBigInt(cfg.Field.NonResidue)
	if err != nil {
		return err
	}
	generator, err := config.ParseBigInt(cfg.Field.Generator)
	if err != nil {
		return err
	}
	fieldCfg, err := field.NewNativeConfig(modulus, cfg.Field.Degree, nonResidue, generator)
	if err != nil {
		return fmt.Errorf("shard-verify: %w", err)
	}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 1<<20), 1<<24)

	if !scanner.Scan() {
		return fmt.Errorf("shard-verify: failed to read verifying_key line")
	}
	var vkWire stdinVerifyingKey
	if err := json.Unmarshal(scanner.Bytes(), &vkWire); err != nil {
		return fmt.Errorf("shard-verify: parse verifying_key: %w", err)
	}

	if !scanner.Scan() {
		return fmt.Errorf("shard-verify: failed to read proof line")
	}
	var proofWire stdinProof
	if err := json.Unmarshal(scanner.Bytes(), &proofWire); err != nil {
		return fmt.Errorf("shard-verify: parse proof: %w", err)
	}

	vk, err := decodeVerifyingKey(vkWire)
	if err != nil {
		return err
	}
	proof, err := decodeProof(proofWire)
	if err != nil {
		return err
	}

	pcs := verify.TrivialPCS{Cfg: fieldCfg}
	verifier := verify.New(fieldCfg, pcs)
	verifier.Logger = logger
	verifier.CPUChipName = cfg.RequireCPUChip

	ch := challenger.New(fieldCfg)
	ch.Observe(proof.Commitment.Main)

	var chips []air.Chip // the concrete chip registry is supplied by a deployment, not this generic CLI

	logger.Info().Int("chips", len(chips)).Msg("verifying shard")
	if err := verifier.VerifyShard(vk, chips, ch, proof); err != nil {
		fmt.Fprintln(os.Stdout, "INVALID:", err)
		os.Exit(1)
	}
	fmt.Fprintln(os.Stdout, "VALID")
	return nil
}

func decodeVerifyingKey(wire stdinVerifyingKey) (verify.StarkVerifyingKey, error) {
	commit, err := decodeDigest(wire.Commit)
	if err != nil {
		return verify.StarkVerifyingKey{}, fmt.Errorf("shard-verify: verifying_key.commit: %w", err)
	}
	pcStart, err := decodeBase(wire.PCStart)
	if err != nil {
		return verify.StarkVerifyingKey{}, fmt.Errorf("shard-verify: verifying_key.pc_start: %w", err)
	}
	return verify.StarkVerifyingKey{Commit: commit, PCStart: pcStart}, nil
}

func decodeProof(wire stdinProof) (verify.ShardProof, error) {
	main, err := decodeDigest(wire.Commitment.Main)
	if err != nil {
		return verify.ShardProof{}, fmt.Errorf("shard-verify: commitment.main: %w", err)
	}
	perm, err := decodeDigest(wire.Commitment.Permutation)
	if err != nil {
		return verify.ShardProof{}, fmt.Errorf("shard-verify: commitment.permutation: %w", err)
	}
	quotient, err := decodeDigest(wire.Commitment.Quotient)
	if err != nil {
		return verify.ShardProof{}, fmt.Errorf("shard-verify: commitment.quotient: %w", err)
	}
	publicValues := make([]field.Base, len(wire.PublicValues))
	for i, s := range wire.PublicValues {
		b, err := decodeBase(s)
		if err != nil {
			return verify.ShardProof{}, fmt.Errorf("shard-verify: public_values[%d]: %w", i, err)
		}
		publicValues[i] = b
	}
	return verify.ShardProof{
		Commitment: verify.ShardCommitment{
			Main:        main,
			Permutation: perm,
			Quotient:    quotient,
		},
		ChipOrdering: wire.ChipOrdering,
		PublicValues: publicValues,
	}, nil
}

func decodeDigest(elems []string) (field.Digest, error) {
	var d field.Digest
	if len(elems) != field.DigestElements {
		return d, fmt.Errorf("expected %d elements, got %d", field.DigestElements, len(elems))
	}
	for i, s := range elems {
		b, err := decodeBase(s)
		if err != nil {
			return d, err
		}
		d[i] = b
	}
	return d, nil
}

func decodeBase(s string) (field.Base, error) {
	v, err := config.ParseBigInt(s)
	if err != nil {
		return field.Base{}, err
	}
	return field.NewBase(v), nil
}
