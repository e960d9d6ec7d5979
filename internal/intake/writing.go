package intake

import (
	"strings"
	"unicode/utf8"
)

// NoteLevel grades a piece of writing feedback.
type NoteLevel string

const (
	LevelWarning    NoteLevel = "warning"
	LevelInfo       NoteLevel = "info"
	LevelSuggestion NoteLevel = "suggestion"
)

// NoteKind identifies which rule produced a note.
type NoteKind string

const (
	NoteTooShort NoteKind = "too_short"
	NoteTooLong  NoteKind = "too_long"
	NoteVague    NoteKind = "vague"
	NoteLocation NoteKind = "location"
	NotePriority NoteKind = "priority"
)

// Length thresholds, in characters.
const (
	shortTextLen = 20
	longTextLen  = 500
	vagueTextLen = 50
)

// Note is one item of writing feedback.
type Note struct {
	Kind    NoteKind  `json:"kind"`
	Level   NoteLevel `json:"level"`
	Message string    `json:"message"`
}

// Analysis is the full feedback for one text.
type Analysis struct {
	Keywords    []string `json:"keywords"`
	Warnings    []Note   `json:"warnings"`
	Suggestions []Note   `json:"suggestions"`
}

// WritingAnalyzer applies the fixed writing rules to a description.
type WritingAnalyzer struct {
	keywords *KeywordExtractor
	vague    []string
	location []string
	urgency  []string
}

// NewWritingAnalyzer builds an analyzer over the given word sets.
func NewWritingAnalyzer(sets WordSets, keywords *KeywordExtractor) *WritingAnalyzer {
	return &WritingAnalyzer{
		keywords: keywords,
		vague:    append([]string(nil), sets.VagueWords...),
		location: append([]string(nil), sets.LocationWords...),
		urgency:  append([]string(nil), sets.UrgencyWords...),
	}
}

// Analyze evaluates every rule independently; all that apply fire.
func (a *WritingAnalyzer) Analyze(text string) Analysis {
	result := Analysis{
		Keywords:    a.keywords.Extract(text),
		Warnings:    []Note{},
		Suggestions: []Note{},
	}
	length := utf8.RuneCountInString(text)
	lower := strings.ToLower(text)

	if length < shortTextLen {
		result.Warnings = append(result.Warnings, Note{
			Kind:    NoteTooShort,
			Level:   LevelWarning,
			Message: "Description is too short. Add more detail for better issue tracking.",
		})
	}
	if length > longTextLen {
		result.Warnings = append(result.Warnings, Note{
			Kind:    NoteTooLong,
			Level:   LevelInfo,
			Message: "Description is quite long. Consider breaking it into bullet points.",
		})
	}
	if length < vagueTextLen && containsAny(lower, a.vague) {
		result.Warnings = append(result.Warnings, Note{
			Kind:    NoteVague,
			Level:   LevelWarning,
			Message: "Try to be more specific. What exactly is the problem?",
		})
	}
	// An empty draft has nothing to locate yet.
	if length > 0 && !containsAny(lower, a.location) {
		result.Suggestions = append(result.Suggestions, Note{
			Kind:    NoteLocation,
			Level:   LevelSuggestion,
			Message: `Add location details (e.g. "Room 201, Block A").`,
		})
	}
	if containsAny(lower, a.urgency) {
		result.Suggestions = append(result.Suggestions, Note{
			Kind:    NotePriority,
			Level:   LevelSuggestion,
			Message: "Consider marking priority as high or urgent.",
		})
	}
	return result
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
