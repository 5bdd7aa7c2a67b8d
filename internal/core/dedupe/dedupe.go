// Package dedupe collapses candidate streams to unique items by URL.
//
// Two guarantees live side by side deliberately: the in-memory pipeline
// dedup is exact case-sensitive string identity (URLs differing by case,
// trailing slash, or query string stay distinct), while the storage layer
// hashes a lowercased, trimmed URL and so merges more aggressively. The
// pipeline rule is a documented weak guarantee; the storage hash is the
// stronger backstop.
package dedupe

import (
	"crypto/md5"
	"encoding/hex"
	"strings"

	"github.com/blkoutuk/research-agent/internal/core/model"
)

// ByURL returns the candidates whose URL has not been seen earlier in the
// stream. Order is preserved and the first occurrence wins, so a duplicate
// from a later query keeps the earlier result's metadata.
func ByURL[C model.Candidate](in []C) []C {
	seen := make(map[string]struct{}, len(in))
	out := make([]C, 0, len(in))
	for _, c := range in {
		url := c.CandidateURL()
		if _, ok := seen[url]; ok {
			continue
		}
		seen[url] = struct{}{}
		out = append(out, c)
	}
	return out
}

// URLHash is the storage-level content hash: hex md5 of the lowercased,
// trimmed URL. Inserts carrying an existing hash are rejected as duplicates.
func URLHash(url string) string {
	normalized := strings.ToLower(strings.TrimSpace(url))
	sum := md5.Sum([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
