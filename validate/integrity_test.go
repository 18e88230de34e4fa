package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	edgar "github.com/secfilings/go-edgar-pipeline"
	"github.com/secfilings/go-edgar-pipeline/validate"
)

func TestCheckReferentialIntegrity_Clean(t *testing.T) {
	x := &edgar.XBRL{
		Contexts: []edgar.Context{{ID: "c1"}},
		Units:    []edgar.Unit{{ID: "u1"}},
		Facts: []edgar.Fact{
			{Concept: "us-gaap:Assets", ContextRef: "c1", UnitRef: "u1"},
		},
	}

	warnings := validate.CheckReferentialIntegrity(x)
	assert.Empty(t, warnings)
}

func TestCheckReferentialIntegrity_OrphanContext(t *testing.T) {
	x := &edgar.XBRL{
		Contexts: []edgar.Context{{ID: "c1"}},
		Units:    []edgar.Unit{{ID: "u1"}},
		Facts: []edgar.Fact{
			{Concept: "us-gaap:Assets", ContextRef: "missing", UnitRef: "u1"},
		},
	}

	warnings := validate.CheckReferentialIntegrity(x)
	assert.Len(t, warnings, 1)
	assert.Equal(t, "ORPHAN_CONTEXT_REF", warnings[0].Code)
}

func TestCheckReferentialIntegrity_OrphanUnit(t *testing.T) {
	x := &edgar.XBRL{
		Contexts: []edgar.Context{{ID: "c1"}},
		Units:    []edgar.Unit{{ID: "u1"}},
		Facts: []edgar.Fact{
			{Concept: "us-gaap:Assets", ContextRef: "c1", UnitRef: "missing"},
		},
	}

	warnings := validate.CheckReferentialIntegrity(x)
	assert.Len(t, warnings, 1)
	assert.Equal(t, "ORPHAN_UNIT_REF", warnings[0].Code)
}

func TestCheckReferentialIntegrity_MissingUnitOnNumericFact(t *testing.T) {
	x := &edgar.XBRL{
		Contexts: []edgar.Context{{ID: "c1"}},
		Facts: []edgar.Fact{
			{Concept: "us-gaap:Assets", ContextRef: "c1", NonNumeric: false},
		},
	}

	warnings := validate.CheckReferentialIntegrity(x)
	assert.Len(t, warnings, 1)
	assert.Equal(t, "MISSING_UNIT", warnings[0].Code)
}

func TestCheckReferentialIntegrity_NonNumericFactsDontNeedUnits(t *testing.T) {
	x := &edgar.XBRL{
		Contexts: []edgar.Context{{ID: "c1"}},
		Facts: []edgar.Fact{
			{Concept: "dei:DocumentType", ContextRef: "c1", NonNumeric: true},
		},
	}

	warnings := validate.CheckReferentialIntegrity(x)
	assert.Empty(t, warnings)
}
