// internal/models/response.go
package models

// AnswerKind discriminates the shape of an Answer.
type AnswerKind int

const (
	AnswerNumber AnswerKind = iota + 1
	AnswerText
	AnswerSet
	AnswerAgeRange
)

// AgeRange is the small structured age-pair answer shape.
type AgeRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Contains reports whether age falls inside the range, inclusive.
func (r AgeRange) Contains(age int) bool {
	return age >= r.Min && age <= r.Max
}

// Answer is a tagged variant over the four answer shapes a question can take.
type Answer struct {
	Kind   AnswerKind
	Number float64
	Text   string
	Set    []string
	Range  AgeRange
}

func NumberAnswer(v float64) *Answer    { return &Answer{Kind: AnswerNumber, Number: v} }
func TextAnswer(v string) *Answer       { return &Answer{Kind: AnswerText, Text: v} }
func SetAnswer(v ...string) *Answer     { return &Answer{Kind: AnswerSet, Set: v} }
func AgeRangeAnswer(r AgeRange) *Answer { return &Answer{Kind: AnswerAgeRange, Range: r} }

// PreferenceKind discriminates the shape of a Preference. PrefNone is the
// "doesn't matter" sentinel: the holder is satisfied by any partner value.
type PreferenceKind int

const (
	PrefNone PreferenceKind = iota
	PrefNumber
	PrefText
	PrefSet
	PrefAgeRange
)

// Well-known text preference values.
const (
	PrefSame       = "same"
	PrefSimilar    = "similar"
	PrefDifferent  = "different"
	PrefMore       = "more"
	PrefLess       = "less"
	PrefCompatible = "compatible"
)

// Preference is a tagged variant so the "no preference means always
// satisfied" rule is enforceable at the type level rather than through a
// nullable field.
type Preference struct {
	Kind   PreferenceKind
	Number float64
	Text   string
	Set    []string
	Range  AgeRange
}

func NoPreference() Preference              { return Preference{Kind: PrefNone} }
func NumberPreference(v float64) Preference { return Preference{Kind: PrefNumber, Number: v} }
func TextPreference(v string) Preference    { return Preference{Kind: PrefText, Text: v} }
func SetPreference(v ...string) Preference  { return Preference{Kind: PrefSet, Set: v} }
func AgeRangePreference(r AgeRange) Preference {
	return Preference{Kind: PrefAgeRange, Range: r}
}

// IsNone reports whether the preference is the universal "satisfied by any
// partner value" sentinel. An empty set preference counts as none.
func (p Preference) IsNone() bool {
	if p.Kind == PrefNone {
		return true
	}
	if p.Kind == PrefSet && len(p.Set) == 0 {
		return true
	}
	return false
}

// Importance is one of four ordered salience levels. The numeric weight for
// each level comes from the engine configuration, not from this type.
type Importance string

const (
	NotImportant      Importance = "not_important"
	SomewhatImportant Importance = "somewhat_important"
	Important         Importance = "important"
	VeryImportant     Importance = "very_important"
)

// Valid reports whether the importance value is one of the four levels.
func (i Importance) Valid() bool {
	switch i {
	case NotImportant, SomewhatImportant, Important, VeryImportant:
		return true
	}
	return false
}

// Response is one user's submitted answer to one question. Dealbreaker
// supersedes the importance weight entirely: it is enforced as a hard
// per-question veto during dyad prefiltering, never scored.
type Response struct {
	Answer      *Answer
	Preference  Preference
	Importance  Importance
	Dealbreaker bool
}
