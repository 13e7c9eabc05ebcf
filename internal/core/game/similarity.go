package game

import "strings"

// Hint is the qualitative closeness tier shown after a wrong guess.
type Hint string

const (
	HintNone       Hint = ""
	HintVeryClose  Hint = "very_close"
	HintWarmer     Hint = "warmer"
	HintRightTrack Hint = "right_track"
)

const (
	veryCloseCutoff  = 0.8
	warmerCutoff     = 0.6
	rightTrackCutoff = 0.4
)

// HintFor maps a similarity score to a tier. Every cutoff is exclusive, so a
// score of exactly 0.8 lands in HintWarmer.
func HintFor(score float64) Hint {
	switch {
	case score > veryCloseCutoff:
		return HintVeryClose
	case score > warmerCutoff:
		return HintWarmer
	case score > rightTrackCutoff:
		return HintRightTrack
	default:
		return HintNone
	}
}

// Text returns the player-facing sentence for the tier.
func (h Hint) Text() string {
	switch h {
	case HintVeryClose:
		return "You're very close!"
	case HintWarmer:
		return "You're getting warmer!"
	case HintRightTrack:
		return "You're on the right track."
	default:
		return ""
	}
}

// normalize lower-cases and trims a title for comparison.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Similarity returns 1 - editDistance/maxLen over runes, in [0,1].
// Two empty strings score 1.
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	maxLen := max(len([]rune(a)), len([]rune(b)))
	if maxLen == 0 {
		return 1.0
	}

	distance := levenshteinDistance(a, b)
	return 1.0 - float64(distance)/float64(maxLen)
}

func levenshteinDistance(a string, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 0
			if ra[i-1] != rb[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,
				curr[j-1]+1,
				prev[j-1]+cost,
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}
