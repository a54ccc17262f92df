// Tenant database naming.
//
// Names are computed, never stored secrets: prefix + slugified store slug +
// a short keyed hash of the store id. The hash keeps names collision-free
// when two stores slugify identically, and unguessable without the
// server-wide secret. The function is pure and idempotent: the same store
// always yields the same name, which lets the binder fall back to the
// computed name during provisioning before the registry row is updated.
package tenant

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// maxDatabaseNameLen is MySQL's identifier limit.
const maxDatabaseNameLen = 64

// hashLen is the number of hex characters of the keyed hash kept in the name.
const hashLen = 8

// databaseNameRE is the only shape the provisioner will interpolate into
// CREATE/DROP DATABASE statements.
var databaseNameRE = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// DatabaseName returns the deterministic database name for a store.
//
// Layout: <prefix><slug>_<hex8(HMAC-SHA256(secret, storeID))>, truncating the
// slug portion so the whole name fits MySQL's 64-char identifier limit.
func DatabaseName(prefix, secret string, storeID uint64, slug string) string {
	h := shortHash(secret, storeID)

	s := Slugify(slug)
	// Reserve room for prefix, separator, and hash suffix.
	budget := maxDatabaseNameLen - len(prefix) - 1 - hashLen
	if budget < 1 {
		budget = 1
	}
	if len(s) > budget {
		s = s[:budget]
		s = strings.TrimRight(s, "_")
	}
	if s == "" {
		s = "store"
	}
	return prefix + s + "_" + h
}

// shortHash returns the first hashLen hex characters of
// HMAC-SHA256(secret, big-endian storeID).
func shortHash(secret string, storeID uint64) string {
	var id [8]byte
	binary.BigEndian.PutUint64(id[:], storeID)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(id[:])
	return hex.EncodeToString(mac.Sum(nil))[:hashLen]
}

// ValidDatabaseName reports whether name is safe to interpolate into a
// CREATE/DROP DATABASE statement: lowercase, starts with a letter, contains
// only [a-z0-9_], and fits the identifier limit.
func ValidDatabaseName(name string) bool {
	return len(name) > 0 && len(name) <= maxDatabaseNameLen && databaseNameRE.MatchString(name)
}

// slugTransformer strips diacritics: NFD decomposition, drop combining
// marks, NFC recomposition.
var slugTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify normalizes a store slug into a database-identifier-safe fragment:
// diacritics stripped, lowercased, runs of non-alphanumerics collapsed to a
// single underscore, leading digits/underscores trimmed.
func Slugify(s string) string {
	if out, _, err := transform.String(slugTransformer, s); err == nil {
		s = out
	}
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	lastUnderscore := true // swallow leading separators
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	out := strings.Trim(b.String(), "_")
	// Identifiers must not start with a digit.
	out = strings.TrimLeft(out, "0123456789")
	return strings.TrimLeft(out, "_")
}
