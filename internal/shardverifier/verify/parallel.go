package verify

import (
	"golang.org/x/sync/errgroup"

	"github.com/vybium/shard-verifier/internal/shardverifier/air"
)

// ShardVerificationJob is one shard's worth of VerifyShard input, bundled so
// VerifyShards can fan work out without each caller re-deriving a
// challenger by hand.
type ShardVerificationJob struct {
	VerifyingKey StarkVerifyingKey
	Chips        []air.Chip
	Challenger   Challenger
	Proof        ShardProof
}

// VerifyShards verifies every job concurrently and returns the first error
// encountered, matching §5's note that shards are independently verifiable
// and "MAY be run in parallel." Each job owns its own Challenger, so no
// shared mutable transcript state crosses goroutines. A failing job does
// not cancel the others: Wait returns only after every job has finished.
func (v *ShardVerifier) VerifyShards(jobs []ShardVerificationJob) error {
	var g errgroup.Group
	for _, job := range jobs {
		job := job
		g.Go(func() error {
			return v.VerifyShard(job.VerifyingKey, job.Chips, job.Challenger, job.Proof)
		})
	}
	return g.Wait()
}
