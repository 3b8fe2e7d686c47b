package dominions

import "fmt"

// Nation is a playable faction from the built-in catalog.
type Nation struct {
	ID   uint32 `json:"id"`
	Name string `json:"name"`
	Era  Era    `json:"era"`
}

func (n Nation) String() string {
	return fmt.Sprintf("%s %s (%d)", n.Era, n.Name, n.ID)
}

// PlaceholderNation stands in for a nation id the catalog does not know,
// such as one reported by a newer game host.
func PlaceholderNation(id uint32, era Era) Nation {
	return Nation{ID: id, Name: fmt.Sprintf("Nation %d", id), Era: era}
}

// NationDetails is one nation slot as reported by a running game host.
type NationDetails struct {
	Nation    Nation           `json:"nation"`
	Status    NationStatus     `json:"status"`
	Submitted SubmissionStatus `json:"submitted"`
	Connected bool             `json:"connected"`
}
