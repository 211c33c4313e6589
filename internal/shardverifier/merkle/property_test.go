package merkle

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/vybium/shard-verifier/internal/shardverifier/field"
)

// TestMerkleRoundTripProperty is §8 universal property 1: for any non-empty
// leaf set and any index into it, opening and verifying that index against
// the tree's own commitment always succeeds and returns the original leaf.
func TestMerkleRoundTripProperty(t *testing.T) {
	cfg := testConfig(t)
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("commit/open/verify round-trips for every index", prop.ForAll(
		func(n int) bool {
			leaves := make([]field.Digest, n)
			for i := range leaves {
				leaves[i] = leafDigest(cfg, i)
			}
			root, tree, err := Commit(cfg, leaves)
			if err != nil {
				return false
			}
			for i := range leaves {
				v, p, err := tree.Open(i)
				if err != nil {
					return false
				}
				if !digestEqual(cfg, v, leaves[i]) {
					return false
				}
				if Verify(cfg, i, v, p, root) != nil {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 33),
	))

	properties.TestingRun(t)
}

// TestMerkleSoundnessProperty is §8 universal property 2: replacing the
// opened value, the first sibling in the path, or the root itself must make
// Verify reject — a tampered proof never passes.
func TestMerkleSoundnessProperty(t *testing.T) {
	cfg := testConfig(t)
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("tampering value, path, or root breaks verification", prop.ForAll(
		func(n, idx, which int) bool {
			leaves := make([]field.Digest, n)
			for i := range leaves {
				leaves[i] = leafDigest(cfg, i)
			}
			root, tree, err := Commit(cfg, leaves)
			if err != nil {
				return false
			}
			index := idx % n
			value, path, err := tree.Open(index)
			if err != nil {
				return false
			}

			tamperedValue := value
			tamperedPath := append([]field.Digest(nil), path...)
			tamperedRoot := root

			switch which % 3 {
			case 0:
				tamperedValue = leafDigest(cfg, n+1000)
			case 1:
				if len(tamperedPath) == 0 {
					return true // single-leaf tree has no path to tamper
				}
				tamperedPath[0] = leafDigest(cfg, n+2000)
			case 2:
				tamperedRoot = leafDigest(cfg, n+3000)
			}

			return Verify(cfg, index, tamperedValue, tamperedPath, tamperedRoot) != nil
		},
		gen.IntRange(2, 33),
		gen.IntRange(0, 1000),
		gen.IntRange(0, 2),
	))

	properties.TestingRun(t)
}

// TestMerklePaddingIndependenceProperty is §8 universal property 3: two
// leaf vectors that agree on their first k entries open identically at any
// index below k. Only the first k entries of each are passed to Commit,
// which pads both with cfg.DefaultDigest(); the differing entries written
// past index k never reach the tree.
func TestMerklePaddingIndependenceProperty(t *testing.T) {
	cfg := testConfig(t)
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("opening index < k is independent of padding filler", prop.ForAll(
		func(k, queryIdx int) bool {
			n := nextPowerOfTwo(k)
			leavesA := make([]field.Digest, n)
			leavesB := make([]field.Digest, n)
			for i := 0; i < k; i++ {
				leavesA[i] = leafDigest(cfg, i)
				leavesB[i] = leafDigest(cfg, i)
			}
			for i := k; i < n; i++ {
				leavesA[i] = leafDigest(cfg, 9000+i)
				leavesB[i] = leafDigest(cfg, 8000+i) // distinct filler
			}

			_, treeA, err := Commit(cfg, leavesA[:k])
			if err != nil {
				return false
			}
			_, treeB, err := Commit(cfg, leavesB[:k])
			if err != nil {
				return false
			}

			index := queryIdx % k
			va, pa, err := treeA.Open(index)
			if err != nil {
				return false
			}
			vb, pb, err := treeB.Open(index)
			if err != nil {
				return false
			}
			if !digestEqual(cfg, va, vb) {
				return false
			}
			if len(pa) != len(pb) {
				return false
			}
			for i := range pa {
				if !digestEqual(cfg, pa[i], pb[i]) {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 20),
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t)
}
