package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// fieldSeparator keeps adjacent fields from colliding in the hash input.
const fieldSeparator = 0x1e

// ContentFingerprint derives a stable hash over the exact input fields that
// feed BuildEmbeddingText, together with EmbeddingTextBuilderVersion. The
// inputs are hashed rather than the rendered string, so the fingerprint only
// moves when content moves; a builder version bump invalidates every stored
// fingerprint.
func ContentFingerprint(l Listing) string {
	h := sha256.New()
	for _, field := range []string{
		EmbeddingTextBuilderVersion,
		l.Title,
		l.Description,
		string(l.PropertyType),
		string(l.TransactionType),
		l.Location.Province,
		l.Location.City,
		l.Location.District,
		strconv.Itoa(l.Bedrooms),
		strconv.Itoa(l.Bathrooms),
		strings.Join(canonicalFeatures(l.Features), "\x1f"),
	} {
		h.Write([]byte(field))
		h.Write([]byte{fieldSeparator})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// EmbeddingStale reports whether the stored embedding no longer matches the
// listing's current content. Absent embeddings on vectorizable listings count
// as stale.
func EmbeddingStale(l Listing) bool {
	if !VectorizableStatus(l.Status) {
		return false
	}
	return l.Embedding == nil || l.ContentFingerprint != ContentFingerprint(l)
}
