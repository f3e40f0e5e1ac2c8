package diag

import "volt/internal/source"

// Applicability grades how mechanically a suggestion may be applied.
type Applicability uint8

const (
	// ApplicabilityUnspecified: инструмент ничего не обещает.
	ApplicabilityUnspecified Applicability = iota
	// ApplicabilityMachineApplicable: the edit preserves meaning and may be
	// applied without review. `volt fix` only ever applies this grade.
	ApplicabilityMachineApplicable
	// ApplicabilityMaybeIncorrect: plausible but needs a human eye.
	ApplicabilityMaybeIncorrect
	// ApplicabilityHasPlaceholders: the snippet contains holes such as
	// `/* fields */` and cannot compile as written.
	ApplicabilityHasPlaceholders
)

func (a Applicability) String() string {
	switch a {
	case ApplicabilityMachineApplicable:
		return "machine-applicable"
	case ApplicabilityMaybeIncorrect:
		return "maybe-incorrect"
	case ApplicabilityHasPlaceholders:
		return "has-placeholders"
	default:
		return "unspecified"
	}
}

// SuggestionStyle controls how much of the suggestion the renderer shows.
type SuggestionStyle uint8

const (
	// StyleShowCode renders the rewritten snippet inline.
	StyleShowCode SuggestionStyle = iota
	// StyleHideCodeInline shows the message but keeps the snippet out of the
	// inline view; it still participates in `volt fix`.
	StyleHideCodeInline
	// StyleHideCodeAlways never renders the snippet.
	StyleHideCodeAlways
	// StyleCompletelyHidden drops the whole suggestion from human output.
	StyleCompletelyHidden
)

// HideInline reports whether the snippet should stay out of the inline
// annotated view.
func (s SuggestionStyle) HideInline() bool {
	return s != StyleShowCode
}

// SubstitutionPart is one span-to-snippet replacement. An empty Snippet
// deletes the span; an empty span inserts before its start offset.
type SubstitutionPart struct {
	Span    source.Span
	Snippet string
}

// Substitution is one coherent way to rewrite the code: all parts are
// applied together or not at all.
type Substitution struct {
	Parts []SubstitutionPart
}

// CodeSuggestion is a structured edit attached to a diagnostic. Several
// alternative substitutions may be carried; each one is complete on its own.
type CodeSuggestion struct {
	Substitutions []Substitution
	Message       string
	Applicability Applicability
	Style         SuggestionStyle
}

func (cs *CodeSuggestion) clone() CodeSuggestion {
	out := CodeSuggestion{
		Message:       cs.Message,
		Applicability: cs.Applicability,
		Style:         cs.Style,
	}
	out.Substitutions = make([]Substitution, len(cs.Substitutions))
	for i, sub := range cs.Substitutions {
		parts := make([]SubstitutionPart, len(sub.Parts))
		copy(parts, sub.Parts)
		out.Substitutions[i] = Substitution{Parts: parts}
	}
	return out
}
