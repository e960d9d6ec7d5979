package intake

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestAnalyzer() *WritingAnalyzer {
	sets := DefaultWordSets()
	return NewWritingAnalyzer(sets, NewKeywordExtractor(sets.StopWords))
}

func kinds(notes []Note) []NoteKind {
	out := make([]NoteKind, 0, len(notes))
	for _, n := range notes {
		out = append(out, n.Kind)
	}
	return out
}

func TestWritingAnalyzer_Rules(t *testing.T) {
	tests := []struct {
		name            string
		text            string
		wantWarnings    []NoteKind
		wantSuggestions []NoteKind
	}{
		{
			name:            "empty text only warns too short",
			text:            "",
			wantWarnings:    []NoteKind{NoteTooShort},
			wantSuggestions: []NoteKind{},
		},
		{
			name:            "urgent leak with location",
			text:            "Leak in room 201, urgent!!",
			wantWarnings:    []NoteKind{},
			wantSuggestions: []NoteKind{NotePriority},
		},
		{
			name:            "short and vague without location",
			text:            "stuff broken",
			wantWarnings:    []NoteKind{NoteTooShort, NoteVague},
			wantSuggestions: []NoteKind{NoteLocation},
		},
		{
			name:            "vague words ignored at fifty characters or more",
			text:            "The ceiling fan makes a grinding problem noise at night",
			wantWarnings:    []NoteKind{},
			wantSuggestions: []NoteKind{NoteLocation},
		},
		{
			name:            "matching is case insensitive substring",
			text:            "EMERGENCY: sparks from socket in BATHROOM",
			wantWarnings:    []NoteKind{},
			wantSuggestions: []NoteKind{NotePriority},
		},
		{
			name:            "substring inside a larger word counts",
			text:            "Mushroom smell near the staircase landing",
			wantWarnings:    []NoteKind{},
			wantSuggestions: []NoteKind{},
		},
		{
			name:            "long text gets info note",
			text:            "Corridor light " + strings.Repeat("flickers constantly ", 30),
			wantWarnings:    []NoteKind{NoteTooLong},
			wantSuggestions: []NoteKind{},
		},
	}

	a := newTestAnalyzer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.Analyze(tt.text)
			assert.Equal(t, tt.wantWarnings, kinds(got.Warnings))
			assert.Equal(t, tt.wantSuggestions, kinds(got.Suggestions))
		})
	}
}

func TestWritingAnalyzer_TooLongIsInformational(t *testing.T) {
	got := newTestAnalyzer().Analyze(strings.Repeat("water dripping in room ", 30))
	if assert.Len(t, got.Warnings, 1) {
		assert.Equal(t, LevelInfo, got.Warnings[0].Level)
	}
}

func TestWritingAnalyzer_Keywords(t *testing.T) {
	got := newTestAnalyzer().Analyze("Leak in room 201, urgent!!")
	assert.Equal(t, []string{"leak", "room", "urgent"}, got.Keywords)
}

func TestWritingAnalyzer_CountsCharactersNotBytes(t *testing.T) {
	// 19 characters, 38 bytes.
	text := strings.Repeat("é", 19)
	got := newTestAnalyzer().Analyze(text)
	assert.Contains(t, kinds(got.Warnings), NoteTooShort)
}

func TestWritingAnalyzer_Deterministic(t *testing.T) {
	a := newTestAnalyzer()
	text := "Something is broken in the hostel kitchen, urgent"
	assert.Equal(t, a.Analyze(text), a.Analyze(text))
}

func TestWritingAnalyzer_InjectedWordSets(t *testing.T) {
	sets := DefaultWordSets().WithOverrides(WordSets{LocationWords: []string{"kitchen"}})
	a := NewWritingAnalyzer(sets, NewKeywordExtractor(sets.StopWords))

	got := a.Analyze("The kitchen sink drains very slowly")
	assert.Empty(t, got.Suggestions)

	got = a.Analyze("The sink in room 4 drains very slowly")
	assert.Equal(t, []NoteKind{NoteLocation}, kinds(got.Suggestions))
}
