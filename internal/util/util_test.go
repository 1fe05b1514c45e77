package util

import "testing"

func TestNextPow2(t *testing.T) {
	t.Parallel()

	cases := map[uint64]uint64{0: 1, 1: 1, 2: 2, 3: 4, 5: 8, 64: 64, 65: 128, 1<<63 + 1: 1 << 63}
	for in, want := range cases {
		if got := NextPow2(in); got != want {
			t.Fatalf("NextPow2(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestShardCount(t *testing.T) {
	t.Parallel()

	for _, n := range []int{-1, 0, 1, 3, 17, 1000} {
		got := ShardCount(n)
		if got < 1 || got > MaxShards || got&(got-1) != 0 {
			t.Fatalf("ShardCount(%d) = %d: want power of two in [1,%d]", n, got, MaxShards)
		}
	}
	if got := ShardCount(3); got != 4 {
		t.Fatalf("ShardCount(3) = %d, want 4", got)
	}
}

func TestHash_EqualKeysEqualHashes(t *testing.T) {
	t.Parallel()

	if Hash("abc") != Hash("abc") {
		t.Fatal("string hash not stable")
	}
	if Hash(int32(7)) != Hash(int64(7)) {
		t.Fatal("integer widths must hash alike")
	}
	if Hash("a") == Hash("b") {
		t.Fatal("distinct short strings collided")
	}
}

func TestHash_AnyComparableKey(t *testing.T) {
	t.Parallel()

	type pair struct{ a, b int }
	if Hash(pair{1, 2}) != Hash(pair{1, 2}) {
		t.Fatal("struct hash not stable")
	}
	if Hash(pair{1, 2}) == Hash(pair{2, 1}) {
		t.Fatal("distinct struct keys collided")
	}
	if Hash(float32(1.5)) != Hash(float32(1.5)) {
		t.Fatal("float32 hash not stable")
	}
	if Hash([3]int{1, 2, 3}) != Hash([3]int{1, 2, 3}) {
		t.Fatal("array hash not stable")
	}
	var k any = "x"
	if Hash(k) != Hash(any("x")) {
		t.Fatal("interface key hash not stable")
	}
}

func TestHash_PointerKeys(t *testing.T) {
	t.Parallel()

	a, b := new(int), new(int)
	if Hash(a) != Hash(a) {
		t.Fatal("pointer hash not stable")
	}
	if Hash(a) == Hash(b) {
		t.Fatal("distinct pointers collided")
	}
}
