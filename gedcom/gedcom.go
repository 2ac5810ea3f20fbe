// Data model for pre-parsed genealogical datasets.
// Individuals and families arrive from an external GEDCOM parser;
// this package only holds them and offers lookups and sanitizing.
package gedcom

// Sex of an individual, as recorded in the source data.
type Sex string

const (
	Male    Sex = "M"
	Female  Sex = "F"
	Unknown Sex = "U"
)

// Individual is one person entity, identified by a stable id.
type Individual struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Sex       Sex    `json:"sex,omitempty"`
	BirthDate string `json:"birthDate,omitempty"`
	DeathDate string `json:"deathDate,omitempty"`

	// FamilyAsChild links to the family this individual is a child of.
	FamilyAsChild string `json:"famc,omitempty"`
	// FamiliesAsSpouse links to the families this individual is a spouse in.
	FamiliesAsSpouse []string `json:"fams,omitempty"`
}

// Name returns the display name, falling back to the id when empty.
func (indi *Individual) Name() string {
	switch {
	case indi.FirstName != "" && indi.LastName != "":
		return indi.FirstName + " " + indi.LastName
	case indi.FirstName != "":
		return indi.FirstName
	case indi.LastName != "":
		return indi.LastName
	}
	return indi.ID
}

// Family links parent and child individuals.
type Family struct {
	ID       string   `json:"id"`
	Husband  string   `json:"husb,omitempty"`
	Wife     string   `json:"wife,omitempty"`
	Children []string `json:"children,omitempty"`
}

// Dataset is a complete parsed genealogy.
type Dataset struct {
	Indis []*Individual `json:"indis"`
	Fams  []*Family     `json:"fams"`
}

// Individual returns the record with the given id, or nil.
func (d *Dataset) Individual(id string) *Individual {
	for _, indi := range d.Indis {
		if indi.ID == id {
			return indi
		}
	}
	return nil
}

// Family returns the record with the given id, or nil.
func (d *Dataset) Family(id string) *Family {
	for _, fam := range d.Fams {
		if fam.ID == id {
			return fam
		}
	}
	return nil
}

// DedupIndividuals removes records sharing an id with an earlier one.
// The first occurrence wins; duplicate detail is discarded, not merged,
// so upstream data must not carry meaningful fields only on duplicates.
func DedupIndividuals(indis []*Individual) []*Individual {
	seen := make(map[string]bool, len(indis))
	out := make([]*Individual, 0, len(indis))
	for _, indi := range indis {
		if seen[indi.ID] {
			continue
		}
		seen[indi.ID] = true
		out = append(out, indi)
	}
	return out
}

// Dedup returns a copy of the dataset with duplicate individuals removed.
func (d *Dataset) Dedup() *Dataset {
	return &Dataset{Indis: DedupIndividuals(d.Indis), Fams: d.Fams}
}
