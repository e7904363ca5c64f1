// Package inventory owns the on-disk identity of exported sessions: the
// artifact naming scheme and the scan that recovers which sessions are
// already saved. Artifact existence is the only "already downloaded"
// state the tool keeps.
package inventory

import (
	"fmt"
	"regexp"
	"strconv"
)

// BallType selects which measurement variant of a session is meant.
type BallType string

const (
	BallPremium BallType = "PREMIUM" // ball-flight-model derived
	BallRange   BallType = "RANGE"   // directly sensed
	BallBoth    BallType = "BOTH"    // both variants
)

// ParseBallType accepts the user-facing spellings.
func ParseBallType(s string) (BallType, error) {
	switch BallType(normalizeUpper(s)) {
	case BallPremium:
		return BallPremium, nil
	case BallRange:
		return BallRange, nil
	case BallBoth:
		return BallBoth, nil
	}
	return "", fmt.Errorf("invalid ball type %q (want premium, range or both)", s)
}

func normalizeUpper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'a' <= c && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}
	return string(b)
}

// Dir is the per-variant subdirectory under the data root.
func (b BallType) Dir() string {
	if b == BallRange {
		return "range"
	}
	return "pro"
}

func (b BallType) suffix() string {
	if b == BallRange {
		return "range"
	}
	return "pro"
}

// SessionKey identifies a practice session independently of the remote
// activity id: the calendar day plus the 1-based ordinal of the session
// within that day.
type SessionKey struct {
	Date   string // YYYYMMDD
	Number int
}

func (k SessionKey) String() string {
	return fmt.Sprintf("%s #%d", k.Date, k.Number)
}

// Artifact filename scheme, version 1:
//
//	trackman_<YYYYMMDD>_session<N>_<pro|range>.csv
//
// ArtifactName and ParseArtifactName are the only two places that know
// this shape; everything else goes through them.
var artifactPattern = regexp.MustCompile(`^trackman_(\d{8})_session(\d+)_(pro|range)\.csv$`)

// ArtifactName renders the filename for one (session, variant) pair.
func ArtifactName(key SessionKey, ball BallType) string {
	return fmt.Sprintf("trackman_%s_session%d_%s.csv", key.Date, key.Number, ball.suffix())
}

// ParseArtifactName decomposes a filename produced by ArtifactName.
// ok is false for anything that does not match the scheme exactly.
func ParseArtifactName(name string) (key SessionKey, ball BallType, ok bool) {
	m := artifactPattern.FindStringSubmatch(name)
	if m == nil {
		return SessionKey{}, "", false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil || n < 1 {
		return SessionKey{}, "", false
	}
	ball = BallPremium
	if m[3] == "range" {
		ball = BallRange
	}
	return SessionKey{Date: m[1], Number: n}, ball, true
}
