package dominions

import "strconv"

// NationStatus describes who controls a nation slot in a running game.
// Codes outside the named set are kept as-is.
type NationStatus int

const (
	StatusEmpty            NationStatus = 0
	StatusHuman            NationStatus = 1
	StatusAI               NationStatus = 2
	StatusClosed           NationStatus = 253
	StatusDefeatedThisTurn NationStatus = 254
	StatusDefeated         NationStatus = 255
)

// NationStatusFromInt converts a raw status code from the game host.
func NationStatusFromInt(code int) NationStatus {
	return NationStatus(code)
}

func (s NationStatus) String() string {
	switch s {
	case StatusEmpty:
		return "Empty"
	case StatusHuman:
		return "Human"
	case StatusAI:
		return "AI"
	case StatusClosed:
		return "Closed"
	case StatusDefeatedThisTurn:
		return "Defeated this turn"
	case StatusDefeated:
		return "Defeated"
	default:
		return "Unknown (" + strconv.Itoa(int(s)) + ")"
	}
}

// SubmissionStatus is whether a nation has taken its current turn.
// Unrecognized codes are Unknown and keep their raw value.
type SubmissionStatus int

const (
	NotSubmitted       SubmissionStatus = 0
	PartiallySubmitted SubmissionStatus = 1
	Submitted          SubmissionStatus = 2
)

// SubmissionFromInt converts a raw turn-status code.
func SubmissionFromInt(code int) SubmissionStatus {
	return SubmissionStatus(code)
}

// SubmissionFromBool maps an uploaded flag to Submitted or NotSubmitted.
func SubmissionFromBool(uploaded bool) SubmissionStatus {
	if uploaded {
		return Submitted
	}
	return NotSubmitted
}

// Known reports whether s is one of the three named statuses.
func (s SubmissionStatus) Known() bool {
	return s == NotSubmitted || s == PartiallySubmitted || s == Submitted
}

// String returns the display symbol. Unknown statuses render as their code.
func (s SubmissionStatus) String() string {
	switch s {
	case NotSubmitted:
		return "X"
	case PartiallySubmitted:
		return "/"
	case Submitted:
		return "✓"
	default:
		return strconv.Itoa(int(s))
	}
}
