package dominions

import (
	"fmt"
	"strconv"
	"strings"
)

// Era is a game epoch. Nation ids are only unique within an era.
type Era int

const (
	EraEarly  Era = 1
	EraMiddle Era = 2
	EraLate   Era = 3
)

// Eras lists every era in catalog order.
var Eras = []Era{EraEarly, EraMiddle, EraLate}

func (e Era) String() string {
	switch e {
	case EraEarly:
		return "EA"
	case EraMiddle:
		return "MA"
	case EraLate:
		return "LA"
	default:
		return fmt.Sprintf("Era(%d)", int(e))
	}
}

// ParseEra accepts the short form ("ea"), the long form ("early") or the numeric code.
func ParseEra(s string) (Era, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ea", "early", "1":
		return EraEarly, nil
	case "ma", "middle", "mid", "2":
		return EraMiddle, nil
	case "la", "late", "3":
		return EraLate, nil
	}
	return 0, fmt.Errorf("unknown era %q", s)
}

// Valid reports whether e is one of the known eras.
func (e Era) Valid() bool {
	return e == EraEarly || e == EraMiddle || e == EraLate
}

// MarshalText encodes the era in its short form. The zero era encodes as an
// empty string and unknown eras as their numeric code.
func (e Era) MarshalText() ([]byte, error) {
	switch {
	case e == 0:
		return []byte{}, nil
	case !e.Valid():
		return strconv.AppendInt(nil, int64(e), 10), nil
	}
	return []byte(e.String()), nil
}

// UnmarshalText decodes any form accepted by ParseEra, plus whatever
// MarshalText produces for the zero era and unknown codes.
func (e *Era) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*e = 0
		return nil
	}
	parsed, err := ParseEra(string(b))
	if err != nil {
		code, convErr := strconv.Atoi(string(b))
		if convErr != nil {
			return err
		}
		parsed = Era(code)
	}
	*e = parsed
	return nil
}
