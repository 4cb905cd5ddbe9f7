// Package tracking generates the human-facing HD identifiers assigned to
// user accounts at registration.
package tracking

import (
	"fmt"
	"math/rand"
	"regexp"
	"time"
)

// Prefix is the fixed two-letter prefix of every tracking identifier.
const Prefix = "HD"

// Pattern matches a well-formed tracking identifier (HD followed by digits
// only), used to tell an identifier login apart from an email login.
var Pattern = regexp.MustCompile(`^HD\d+$`)

// Generate returns an identifier from the narrow space: HD plus a random
// three-digit number. The generator performs no uniqueness check; the
// registration flow retries on collision.
func Generate() string {
	return fmt.Sprintf("%s%d", Prefix, 100+rand.Intn(900))
}

// GenerateWide returns an identifier from the widened space: HD plus the
// last six digits of the current unix-millisecond clock plus two random
// digits. Used as a fallback when the narrow space keeps colliding.
func GenerateWide() string {
	millis := time.Now().UnixMilli() % 1_000_000
	return fmt.Sprintf("%s%06d%02d", Prefix, millis, rand.Intn(100))
}

// IsTrackingID reports whether the identifier looks like a tracking
// identifier rather than an email.
func IsTrackingID(identifier string) bool {
	return Pattern.MatchString(identifier)
}
