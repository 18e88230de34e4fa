package validate

import (
	"fmt"

	edgar "github.com/secfilings/go-edgar-pipeline"
)

// CheckReferentialIntegrity flags facts whose contextRef or unitRef don't
// resolve against the document's declared contexts/units, and numeric facts
// reported with no unit at all.
func CheckReferentialIntegrity(x *edgar.XBRL) []edgar.ValidationWarning {
	var warnings []edgar.ValidationWarning

	contexts := make(map[string]bool, len(x.Contexts))
	for _, c := range x.Contexts {
		contexts[c.ID] = true
	}
	units := make(map[string]bool, len(x.Units))
	for _, u := range x.Units {
		units[u.ID] = true
	}

	for _, f := range x.Facts {
		if f.ContextRef != "" && !contexts[f.ContextRef] {
			warnings = append(warnings, edgar.ValidationWarning{
				Code:    "ORPHAN_CONTEXT_REF",
				Message: fmt.Sprintf("fact references undefined context %q", f.ContextRef),
				Concept: f.Concept,
				Context: f.ContextRef,
			})
		}
		if !f.NonNumeric && f.UnitRef == "" {
			warnings = append(warnings, edgar.ValidationWarning{
				Code:    "MISSING_UNIT",
				Message: "numeric fact has no unitRef",
				Concept: f.Concept,
				Context: f.ContextRef,
			})
			continue
		}
		if f.UnitRef != "" && !units[f.UnitRef] {
			warnings = append(warnings, edgar.ValidationWarning{
				Code:    "ORPHAN_UNIT_REF",
				Message: fmt.Sprintf("fact references undefined unit %q", f.UnitRef),
				Concept: f.Concept,
				Context: f.ContextRef,
			})
		}
	}

	return warnings
}
