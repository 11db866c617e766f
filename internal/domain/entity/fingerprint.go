package entity

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// normalize trims surrounding whitespace, collapses internal runs of
// whitespace to single spaces, and lower-cases the value so that cosmetic
// differences between requests never produce distinct fingerprints.
func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// canonicalKey renders one logical entity as a stable "field=value" line.
// Empty fields are included so that adding a value later changes the
// fingerprint.
func canonicalKey(e Logical) string {
	dirs := make([]string, 0, len(e.Directors))
	for _, d := range e.Directors {
		if n := normalize(d); n != "" {
			dirs = append(dirs, n)
		}
	}
	sort.Strings(dirs)

	parts := []string{
		"kind=" + string(e.Kind),
		"name=" + normalize(e.Name),
		"email=" + normalize(e.Email),
		"phone=" + normalize(e.Phone),
		"country=" + normalize(e.Country),
		"regno=" + normalize(e.RegistrationNumber),
		"directors=" + strings.Join(dirs, ","),
	}
	return strings.Join(parts, "|")
}

// Fingerprint computes the deterministic identity of an assessment request.
// It is derived from the normalized identity fields of every logical entity,
// sorted so the result does not depend on the order the entities were
// supplied in. Two requests describing the same subjects always collide,
// which is exactly what the assessment cache wants.
func (in Input) Fingerprint() string {
	keys := make([]string, 0, 2)
	for _, e := range in.Entities() {
		keys = append(keys, canonicalKey(e))
	}
	sort.Strings(keys)

	h := sha256.Sum256([]byte(string(in.Type) + "\n" + strings.Join(keys, "\n")))
	return hex.EncodeToString(h[:])
}
