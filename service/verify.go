package service

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strconv"
)

// HashFunc is the opaque digest primitive. The tree the authority committed
// to and the verifier folding a proof must agree on it.
type HashFunc func(string) string

// MD5Hex digests s and returns the lowercase hex form. It is the default
// HashFunc and matches the digests the authority's fixtures were built with.
func MD5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// ComputeRoot folds an ordered inclusion proof from the leaf item toward the
// root. Which side a sibling digest joins on is re-derived from the parity of
// its last hex character: even means the sibling is the left child and is
// concatenated before the running value, odd means right and after.
//
// The parity rule assumes the authority arranged the tree so that left
// children hash to even-ending digests. That is a simplifying assumption
// inherited from the protocol, not a cryptographic guarantee; a hardened
// authority would tag each sibling with an explicit side instead. The rule
// is kept as-is for wire compatibility.
func ComputeRoot(item string, nodes []string, hash HashFunc) (string, error) {
	running := item
	for _, node := range nodes {
		if node == "" {
			return "", fmt.Errorf("empty proof node")
		}
		last, err := strconv.ParseUint(node[len(node)-1:], 16, 8)
		if err != nil {
			return "", fmt.Errorf("proof node %q: last character is not hex", node)
		}
		if last%2 == 0 {
			running = hash(node + running)
		} else {
			running = hash(running + node)
		}
	}
	return running, nil
}

// VerifyInclusion reports whether item belongs to the set committed to by
// expectedRoot, given the ordered sibling digests of its inclusion proof.
// An empty proof accepts only an item equal to the root itself; a malformed
// proof node rejects. A mismatch is a normal outcome, never an error.
func VerifyInclusion(item string, nodes []string, expectedRoot string, hash HashFunc) bool {
	computed, err := ComputeRoot(item, nodes, hash)
	if err != nil {
		return false
	}
	return computed == expectedRoot
}
