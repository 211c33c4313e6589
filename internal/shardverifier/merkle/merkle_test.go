package merkle

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vybium/shard-verifier/internal/shardverifier/field"
)

func testConfig(t *testing.T) *field.NativeConfig {
	t.Helper()
	cfg, err := field.NewNativeConfig(big.NewInt(18446744069414584321), 2, big.NewInt(7), big.NewInt(7))
	require.NoError(t, err)
	return cfg
}

func leafDigest(cfg field.Config, v int) field.Digest {
	var d field.Digest
	for i := range d {
		d[i] = field.NewBase(big.NewInt(int64(v*100 + i)))
	}
	return d
}

func TestCommitOpenVerifyRoundTrip(t *testing.T) {
	assert := require.New(t)
	cfg := testConfig(t)

	leaves := make([]field.Digest, 5) // deliberately not a power of two, exercises padding
	for i := range leaves {
		leaves[i] = leafDigest(cfg, i)
	}

	root, tree, err := Commit(cfg, leaves)
	assert.NoError(err)

	for i := range leaves {
		value, path, err := tree.Open(i)
		assert.NoError(err)
		assert.Equal(leaves[i], value)
		assert.NoError(Verify(cfg, i, value, path, root))
	}
}

func TestVerifyRejectsTamperedValue(t *testing.T) {
	assert := require.New(t)
	cfg := testConfig(t)

	leaves := []field.Digest{leafDigest(cfg, 0), leafDigest(cfg, 1), leafDigest(cfg, 2), leafDigest(cfg, 3)}
	root, tree, err := Commit(cfg, leaves)
	assert.NoError(err)

	_, path, err := tree.Open(2)
	assert.NoError(err)

	tampered := leafDigest(cfg, 99)
	err = Verify(cfg, 2, tampered, path, root)
	assert.Error(err)
	var vcsErr *VcsError
	assert.ErrorAs(err, &vcsErr)
}

func TestVerifyRejectsWrongIndex(t *testing.T) {
	assert := require.New(t)
	cfg := testConfig(t)

	leaves := []field.Digest{leafDigest(cfg, 0), leafDigest(cfg, 1), leafDigest(cfg, 2), leafDigest(cfg, 3)}
	root, tree, err := Commit(cfg, leaves)
	assert.NoError(err)

	value, path, err := tree.Open(1)
	assert.NoError(err)

	err = Verify(cfg, 2, value, path, root)
	assert.Error(err)
}

func TestCommitPaddingIsDeterministic(t *testing.T) {
	assert := require.New(t)
	cfg := testConfig(t)

	leaves := []field.Digest{leafDigest(cfg, 0), leafDigest(cfg, 1), leafDigest(cfg, 2)}
	root1, _, err := Commit(cfg, leaves)
	assert.NoError(err)
	root2, _, err := Commit(cfg, leaves)
	assert.NoError(err)
	assert.Equal(root1, root2)
}
