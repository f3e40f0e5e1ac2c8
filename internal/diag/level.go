package diag

// Level classifies a diagnostic by how the session must react to it.
// Порядок важен: он задаёт и приоритет сортировки в Bag.
type Level uint8

const (
	// LevelBug marks a broken compiler invariant, not broken user input.
	LevelBug Level = iota
	// LevelFatal aborts the session as soon as the diagnostic is emitted.
	LevelFatal
	LevelError
	LevelWarning
	LevelNote
	LevelHelp
	// LevelCancelled marks a diagnostic that must never reach the emitter.
	LevelCancelled
	// LevelFailureNote is an unspanned trailing note, used by the final
	// error-count summary.
	LevelFailureNote
)

func (l Level) String() string {
	switch l {
	case LevelBug:
		return "error: internal compiler error"
	case LevelFatal, LevelError:
		return "error"
	case LevelWarning:
		return "warning"
	case LevelNote:
		return "note"
	case LevelHelp:
		return "help"
	case LevelFailureNote:
		return "failure-note"
	case LevelCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// IsError reports whether the level contributes to the session error count.
func (l Level) IsError() bool {
	switch l {
	case LevelBug, LevelFatal, LevelError, LevelFailureNote:
		return true
	default:
		return false
	}
}

// sortRank orders levels for deterministic output: самые тяжёлые раньше.
func (l Level) sortRank() int {
	switch l {
	case LevelBug:
		return 0
	case LevelFatal:
		return 1
	case LevelError:
		return 2
	case LevelWarning:
		return 3
	case LevelNote:
		return 4
	case LevelHelp:
		return 5
	case LevelFailureNote:
		return 6
	default:
		return 7
	}
}
