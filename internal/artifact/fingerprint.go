package artifact

import (
	"encoding/binary"
	"slices"

	"github.com/zeebo/xxh3"
)

// Fingerprint hashes the structure and text of a subtree, including the
// leading and trailing source text kept next to the leaves. Two subtrees with
// equal fingerprints are treated as identical. Unordered children are combined
// independently of their order.
func Fingerprint(a *Artifact) uint64 {
	return FingerprintMemo(a, nil)
}

// FingerprintMemo is Fingerprint with a caller-owned memo keyed by node ID.
// A nil memo disables memoization.
func FingerprintMemo(a *Artifact, memo map[ID]uint64) uint64 {
	if a == nil {
		return 0
	}
	if memo != nil {
		if fp, ok := memo[a.ID]; ok {
			return fp
		}
	}

	h := xxh3.New()
	var buf [8]byte
	h.Write([]byte{byte(a.Kind)})
	h.WriteString(a.Type)
	h.Write([]byte{0})
	h.WriteString(a.Label)
	h.Write([]byte{0})
	if a.Digest != "" {
		h.WriteString(a.Digest)
	} else {
		h.Write(a.Content)
	}
	h.Write([]byte{0})
	h.WriteString(a.Leading)
	h.Write([]byte{0})
	h.WriteString(a.Trailing)

	fps := make([]uint64, 0, len(a.children)+len(a.Variants))
	ordered := true
	for _, c := range a.children {
		fps = append(fps, FingerprintMemo(c, memo))
		if !c.Ordered {
			ordered = false
		}
	}
	for _, v := range a.Variants {
		fps = append(fps, FingerprintMemo(v.Node, memo))
	}
	if !ordered || len(a.Variants) > 0 {
		slices.Sort(fps)
	}
	for _, fp := range fps {
		binary.LittleEndian.PutUint64(buf[:], fp)
		h.Write(buf[:])
	}

	fp := h.Sum64()
	if memo != nil {
		memo[a.ID] = fp
	}
	return fp
}

// Identical reports whether two subtrees have the same fingerprint.
func Identical(a, b *Artifact) bool {
	return Fingerprint(a) == Fingerprint(b)
}
