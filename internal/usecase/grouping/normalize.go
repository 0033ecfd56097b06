package grouping

import (
	"regexp"
	"strings"
)

// stemNormalizer is one entry in the ordered platform-decoration table. The
// first normalizer whose Matches reports true claims the stem; its Strip
// result becomes the comparison key. New platforms are added by appending an
// entry, not by touching existing rules.
type stemNormalizer struct {
	name    string
	matches func(stem string) bool
	strip   func(stem string) string
}

var (
	// Teams local exports: "<topic>-20240305_143000-Meeting Recording" and
	// the matching "...-meeting transcript". The timestamp stays in the key
	// so distinct meetings never merge.
	teamsMarkerRe = regexp.MustCompile(`-?meeting[ _](recording|transcript)$`)

	// Zoom cloud: "Audio Transcript_<topic>_<meetingId>_March_5_2024". The
	// topic keeps the key unique; a transcript with no topic reduces to
	// "<meetingId>_march_5_2024", which is exactly the stem Zoom gives the
	// sibling media file.
	zoomPrefixRe = regexp.MustCompile(`^audio transcript_`)
	zoomSuffixRe = regexp.MustCompile(`_\d{9,11}_(january|february|march|april|may|june|july|august|september|october|november|december)_\d{1,2}_\d{4}$`)

	// Google Meet: "<topic> (2024-03-05 at 14:30 GMT+1) - Transcript".
	gmeetParenRe  = regexp.MustCompile(`\s*\(\d{4}-\d{2}-\d{2} at [^)]*\)`)
	gmeetSuffixRe = regexp.MustCompile(`\s*-\s*transcript$`)

	// Legacy sidecar suffixes.
	legacySuffixRe = regexp.MustCompile(`_(transcript|subtitles|captions|sub|srt)$`)

	// Session-export directories: "2024-03-05 14.30.00 Checkout flow 9815324".
	sessionDirRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}\.\d{2}\.\d{2} .+ \S+$`)
)

// stemNormalizers is applied in fixed priority order; first match wins.
var stemNormalizers = []stemNormalizer{
	{
		name:    "teams",
		matches: func(stem string) bool { return teamsMarkerRe.MatchString(stem) },
		strip: func(stem string) string {
			return trimKey(teamsMarkerRe.ReplaceAllString(stem, ""))
		},
	},
	{
		name: "zoom",
		matches: func(stem string) bool {
			return zoomPrefixRe.MatchString(stem) || zoomSuffixRe.MatchString(stem)
		},
		strip: func(stem string) string {
			stem = zoomPrefixRe.ReplaceAllString(stem, "")
			if loc := zoomSuffixRe.FindStringIndex(stem); loc != nil && loc[0] > 0 {
				stem = stem[:loc[0]]
			}
			return trimKey(stem)
		},
	},
	{
		name: "gmeet",
		matches: func(stem string) bool {
			return gmeetParenRe.MatchString(stem) || gmeetSuffixRe.MatchString(stem)
		},
		strip: func(stem string) string {
			stem = gmeetParenRe.ReplaceAllString(stem, "")
			stem = gmeetSuffixRe.ReplaceAllString(stem, "")
			return trimKey(stem)
		},
	},
	{
		name:    "legacy",
		matches: func(stem string) bool { return legacySuffixRe.MatchString(stem) },
		strip: func(stem string) string {
			return trimKey(legacySuffixRe.ReplaceAllString(stem, ""))
		},
	},
}

// normalizeStem reduces a lowercased stem to its platform-independent
// comparison key. Stems matching no rule are returned unchanged, so two
// unrelated files never merge by accident.
func normalizeStem(stem string) string {
	for _, n := range stemNormalizers {
		if n.matches(stem) {
			return n.strip(stem)
		}
	}
	return stem
}

// trimKey removes separator residue left behind by a strip.
func trimKey(s string) string {
	return strings.Trim(strings.TrimSpace(s), "-_ ")
}

// isSessionDir reports whether a directory name matches the local
// platform-export pattern "YYYY-MM-DD HH.MM.SS <topic> <meetingId>".
func isSessionDir(name string) bool {
	return sessionDirRe.MatchString(strings.ToLower(name))
}
