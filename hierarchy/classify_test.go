package hierarchy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/secfilings/go-edgar-pipeline/hierarchy"
)

func TestClassifyRole(t *testing.T) {
	tests := []struct {
		roleURI string
		want    hierarchy.StatementType
	}{
		{"http://acme.com/role/ConsolidatedBalanceSheets", hierarchy.BalanceSheet},
		{"http://acme.com/role/StatementOfFinancialPosition", hierarchy.BalanceSheet},
		{"http://acme.com/role/CondensedConsolidatedStatementsOfOperations", hierarchy.IncomeStatement},
		{"http://acme.com/role/ConsolidatedStatementsOfCashFlows", hierarchy.CashFlowStatement},
		{"http://acme.com/role/ConsolidatedStatementsOfStockholdersEquity", hierarchy.EquityStatement},
		{"http://acme.com/role/ConsolidatedComprehensiveIncome", hierarchy.ComprehensiveIncome},
		{"http://acme.com/role/CoverPage", hierarchy.Unclassified},
	}

	for _, tt := range tests {
		t.Run(tt.roleURI, func(t *testing.T) {
			assert.Equal(t, tt.want, hierarchy.ClassifyRole(tt.roleURI))
		})
	}
}

func TestClassifyConcept(t *testing.T) {
	tests := []struct {
		concept string
		want    hierarchy.StatementType
	}{
		{"us-gaap:AssetsCurrent", hierarchy.BalanceSheet},
		{"us-gaap:Assets", hierarchy.BalanceSheet},
		{"us-gaap:Revenues", hierarchy.IncomeStatement},
		{"us-gaap:NetIncomeLoss", hierarchy.IncomeStatement},
		{"us-gaap:NetCashProvidedByUsedInOperatingActivities", hierarchy.CashFlowStatement},
		{"us-gaap:ComprehensiveIncome", hierarchy.ComprehensiveIncome},
		{"acme:SomeCustomExtensionConcept", hierarchy.Unclassified},
	}

	for _, tt := range tests {
		t.Run(tt.concept, func(t *testing.T) {
			assert.Equal(t, tt.want, hierarchy.ClassifyConcept(tt.concept))
		})
	}
}
