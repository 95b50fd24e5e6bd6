package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolutionOrderMostSpecificFirst(t *testing.T) {
	assert.Equal(t, []AssignmentType{
		AssignmentSubgrupo, AssignmentGrupo, AssignmentCategoria, AssignmentDivision,
	}, ResolutionOrder)

	for i := 1; i < len(ResolutionOrder); i++ {
		assert.Greater(t, ResolutionOrder[i-1].Rank(), ResolutionOrder[i].Rank())
	}
}

func TestGrantMatches(t *testing.T) {
	category := "0102"
	grant := Grant{Type: AssignmentCategoria, DivisionCode: "01", CategoryCode: &category}

	assert.True(t, grant.Matches(Taxonomy{DivisionCode: "01", CategoryCode: "0102"}))
	assert.False(t, grant.Matches(Taxonomy{DivisionCode: "01", CategoryCode: "0103"}))
}

func TestGrantMatchesMissingScope(t *testing.T) {
	grant := Grant{Type: AssignmentSubgrupo, DivisionCode: "01"}
	assert.False(t, grant.Matches(Taxonomy{SubgroupCode: "010101"}))
}

func TestGrantScopeCode(t *testing.T) {
	subgroup := "010101"
	grant := Grant{Type: AssignmentSubgrupo, DivisionCode: "01", SubgroupCode: &subgroup}
	assert.Equal(t, "010101", grant.ScopeCode())

	grant.Type = AssignmentDivision
	assert.Equal(t, "01", grant.ScopeCode())
}

func TestParseAssignmentType(t *testing.T) {
	parsed, ok := ParseAssignmentType(" grupo ")
	assert.True(t, ok)
	assert.Equal(t, AssignmentGrupo, parsed)

	_, ok = ParseAssignmentType("SECTION")
	assert.False(t, ok)
}
