// Package intake holds the pure text heuristics that run while a resident
// composes a report: keyword extraction, writing feedback and duplicate scoring.
package intake

// WordSets are the lexical lists the heuristics match against. They are
// copied into the extractor and analyzer at construction and never mutated.
type WordSets struct {
	StopWords     []string
	VagueWords    []string
	LocationWords []string
	UrgencyWords  []string
}

// DefaultWordSets returns the built-in lists.
func DefaultWordSets() WordSets {
	return WordSets{
		StopWords:     []string{"this", "that", "there", "with", "from", "have", "been", "will", "would", "could", "should"},
		VagueWords:    []string{"something", "thing", "stuff", "problem", "issue", "broken"},
		LocationWords: []string{"room", "floor", "block", "hostel", "bathroom", "corridor"},
		UrgencyWords:  []string{"urgent", "emergency", "critical", "immediate", "danger"},
	}
}

// WithOverrides replaces every non-empty list in o.
func (w WordSets) WithOverrides(o WordSets) WordSets {
	if len(o.StopWords) > 0 {
		w.StopWords = o.StopWords
	}
	if len(o.VagueWords) > 0 {
		w.VagueWords = o.VagueWords
	}
	if len(o.LocationWords) > 0 {
		w.LocationWords = o.LocationWords
	}
	if len(o.UrgencyWords) > 0 {
		w.UrgencyWords = o.UrgencyWords
	}
	return w
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
