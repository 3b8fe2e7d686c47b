package dominions

import (
	"fmt"
	"strconv"
	"strings"
)

// NationSpecifier is what a player typed to pick a nation: either a
// name prefix or a numeric id.
type NationSpecifier struct {
	prefix string
	id     uint32
	byID   bool
}

// ByName specifies a nation by a case-insensitive name prefix.
func ByName(prefix string) NationSpecifier {
	return NationSpecifier{prefix: strings.ToLower(prefix)}
}

// ByID specifies a nation by its exact id.
func ByID(id uint32) NationSpecifier {
	return NationSpecifier{id: id, byID: true}
}

// IsID reports whether the specifier is an id.
func (s NationSpecifier) IsID() bool { return s.byID }

// ID returns the nation id of an id specifier.
func (s NationSpecifier) ID() uint32 { return s.id }

// Prefix returns the lower-cased prefix of a name specifier.
func (s NationSpecifier) Prefix() string { return s.prefix }

func (s NationSpecifier) String() string {
	if s.byID {
		return strconv.FormatUint(uint64(s.id), 10)
	}
	return s.prefix
}

// ResolveLobbyNation resolves a specifier against the catalog nations of era.
func ResolveLobbyNation(spec NationSpecifier, era Era) (Nation, error) {
	nations := NationsForEra(era)
	if spec.byID {
		var found []Nation
		for _, n := range nations {
			if n.ID == spec.id {
				found = append(found, n)
			}
		}
		switch len(found) {
		case 0:
			return Nation{}, &NationError{Kind: ErrNotFound, Specifier: spec, Scope: ScopeLobby, Era: era}
		case 1:
			return found[0], nil
		default:
			return Nation{}, fmt.Errorf("dominions: nation id %d appears %d times in era %s", spec.id, len(found), era)
		}
	}

	var matches []Nation
	for _, n := range nations {
		if strings.HasPrefix(strings.ToLower(n.Name), spec.prefix) {
			matches = append(matches, n)
		}
	}
	switch len(matches) {
	case 0:
		return Nation{}, &NationError{Kind: ErrNotFound, Specifier: spec, Scope: ScopeLobby, Era: era}
	case 1:
		return matches[0], nil
	default:
		return Nation{}, &NationError{Kind: ErrAmbiguous, Specifier: spec, Scope: ScopeLobby, Era: era}
	}
}

// ResolveGameNation resolves a specifier against the nations a running game host
// has reported. Nations that have not uploaded yet cannot be resolved.
func ResolveGameNation(spec NationSpecifier, game GameData) (NationDetails, error) {
	preGame := game.Uploading()
	var matches []NationDetails
	for _, nd := range game.Nations {
		if spec.byID {
			if nd.Nation.ID == spec.id {
				matches = append(matches, nd)
			}
		} else if strings.HasPrefix(strings.ToLower(nd.Nation.Name), spec.prefix) {
			matches = append(matches, nd)
		}
	}

	switch {
	case len(matches) == 0:
		return NationDetails{}, &NationError{Kind: ErrNotFound, Specifier: spec, Scope: ScopeGame, PreGame: preGame}
	case len(matches) == 1:
		return matches[0], nil
	case spec.byID:
		return NationDetails{}, fmt.Errorf("dominions: nation id %d appears %d times in game %q", spec.id, len(matches), game.GameName)
	default:
		return NationDetails{}, &NationError{Kind: ErrAmbiguous, Specifier: spec, Scope: ScopeGame, PreGame: preGame}
	}
}
