package util

import (
	"math/bits"
	"runtime"
)

// MaxShards caps the automatic shard count.
const MaxShards = 256

// NextPow2 returns the smallest power of two >= x (1 for x <= 1).
// Values above 1<<63 clamp to 1<<63.
func NextPow2(x uint64) uint64 {
	if x <= 1 {
		return 1
	}
	if x > 1<<63 {
		return 1 << 63
	}
	return 1 << bits.Len64(x-1)
}

// ShardCount normalizes a requested shard count: n <= 0 picks
// 2*GOMAXPROCS; the result is a power of two in [1, MaxShards].
func ShardCount(n int) int {
	if n <= 0 {
		n = 2 * runtime.GOMAXPROCS(0)
	}
	if n > MaxShards {
		n = MaxShards
	}
	return int(NextPow2(uint64(n)))
}

// ShardIndex maps hash onto one of shards buckets; shards must be a power
// of two.
func ShardIndex(hash uint64, shards int) int {
	return int(hash & uint64(shards-1))
}
