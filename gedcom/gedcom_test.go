package gedcom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedupIndividualsFirstWins(t *testing.T) {
	indis := []*Individual{
		{ID: "I1", FirstName: "Ana", FamilyAsChild: "F1"},
		{ID: "I2", FirstName: "Bela"},
		{ID: "I1", FirstName: "Ana", FamiliesAsSpouse: []string{"F2"}},
		{ID: "I1", FirstName: "Other"},
	}

	out := DedupIndividuals(indis)
	require.Len(t, out, 2)
	assert.Equal(t, "I1", out[0].ID)
	assert.Equal(t, "F1", out[0].FamilyAsChild, "first occurrence must be kept")
	assert.Empty(t, out[0].FamiliesAsSpouse, "duplicate detail must be discarded, not merged")
	assert.Equal(t, "I2", out[1].ID)
}

func TestDedupIndividualsManyDuplicates(t *testing.T) {
	var indis []*Individual
	for i := 0; i < 5; i++ {
		indis = append(indis, &Individual{ID: "I1", BirthDate: string(rune('a' + i))})
	}
	out := DedupIndividuals(indis)
	require.Len(t, out, 1)
	assert.Equal(t, "a", out[0].BirthDate)
}

func TestDatasetLookups(t *testing.T) {
	d := &Dataset{
		Indis: []*Individual{{ID: "I1"}, {ID: "I2"}},
		Fams:  []*Family{{ID: "F1", Husband: "I1"}},
	}
	require.NotNil(t, d.Individual("I2"))
	assert.Nil(t, d.Individual("I9"))
	require.NotNil(t, d.Family("F1"))
	assert.Nil(t, d.Family("F9"))
}

func TestIndividualName(t *testing.T) {
	assert.Equal(t, "Ana Horvat", (&Individual{ID: "I1", FirstName: "Ana", LastName: "Horvat"}).Name())
	assert.Equal(t, "Ana", (&Individual{ID: "I1", FirstName: "Ana"}).Name())
	assert.Equal(t, "I1", (&Individual{ID: "I1"}).Name())
}
