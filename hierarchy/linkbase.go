// Package hierarchy resolves XBRL presentation/calculation/definition
// linkbases into parent/child concept trees and classifies them by
// financial statement type.
package hierarchy

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
)

// Arc is a parent-child edge in a linkbase extended link, as decoded from a
// <loc>/<*Arc> pair sharing an xlink:label.
type Arc struct {
	ParentConcept string
	ChildConcept  string
	Order         float64
	Weight        float64 // calculation arcs only; 0 for presentation/definition
	ArcRole       string
}

// Label is a human-readable label for a concept under a specific label role
// (standard, terseLabel, totalLabel, ...).
type Label struct {
	Concept string
	Role    string
	Lang    string
	Text    string
}

type xmlLoc struct {
	Label string `xml:"label,attr"`
	Href  string `xml:"href,attr"`
}

type xmlArc struct {
	From    string  `xml:"from,attr"`
	To      string  `xml:"to,attr"`
	Order   float64 `xml:"order,attr"`
	Weight  float64 `xml:"weight,attr"`
	ArcRole string  `xml:"arcrole,attr"`
}

type xmlLabel struct {
	Label string `xml:"label,attr"`
	Role  string `xml:"role,attr"`
	Lang  string `xml:"lang,attr"`
	Text  string `xml:",chardata"`
}

type xmlLabelArc struct {
	From string `xml:"from,attr"`
	To   string `xml:"to,attr"`
}

// ParseLinkbase decodes a presentation, calculation, or definition linkbase
// document into its arcs, scoped per extended link (roleRef) since the same
// concept can appear under multiple roles with different parents.
func ParseLinkbase(data []byte) (map[string][]Arc, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.CharsetReader = func(_ string, r io.Reader) (io.Reader, error) { return r, nil }

	arcsByRole := make(map[string][]Arc)
	locsByLabel := make(map[string]string) // xlink:label -> concept (from href fragment)
	var currentRole string

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode linkbase: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case "presentationLink", "calculationLink", "definitionLink":
			currentRole = attrValue(start.Attr, "role")
			locsByLabel = make(map[string]string)
		case "loc":
			var loc xmlLoc
			if err := decoder.DecodeElement(&loc, &start); err == nil {
				locsByLabel[loc.Label] = conceptFromHref(loc.Href)
			}
		case "presentationArc", "calculationArc", "definitionArc":
			var a xmlArc
			if err := decoder.DecodeElement(&a, &start); err != nil {
				continue
			}
			parent, okP := locsByLabel[a.From]
			child, okC := locsByLabel[a.To]
			if !okP || !okC {
				continue
			}
			arcsByRole[currentRole] = append(arcsByRole[currentRole], Arc{
				ParentConcept: parent,
				ChildConcept:  child,
				Order:         a.Order,
				Weight:        a.Weight,
				ArcRole:       a.ArcRole,
			})
		}
	}

	return arcsByRole, nil
}

// ParseLabelLinkbase decodes a label linkbase into labels keyed by
// "concept|role". When several labels share a (concept, role) pair, the
// first one seen is kept, whatever its language.
func ParseLabelLinkbase(data []byte) (map[string]Label, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.CharsetReader = func(_ string, r io.Reader) (io.Reader, error) { return r, nil }

	locsByLabel := make(map[string]string)
	labelsByXlinkLabel := make(map[string][]xmlLabel)
	var arcs []xmlLabelArc

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode label linkbase: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case "loc":
			var loc xmlLoc
			if err := decoder.DecodeElement(&loc, &start); err == nil {
				locsByLabel[loc.Label] = conceptFromHref(loc.Href)
			}
		case "label":
			var l xmlLabel
			if err := decoder.DecodeElement(&l, &start); err == nil {
				labelsByXlinkLabel[l.Label] = append(labelsByXlinkLabel[l.Label], l)
			}
		case "labelArc":
			var a xmlLabelArc
			if err := decoder.DecodeElement(&a, &start); err == nil {
				arcs = append(arcs, a)
			}
		}
	}

	result := make(map[string]Label)
	for _, arc := range arcs {
		concept, ok := locsByLabel[arc.From]
		if !ok {
			continue
		}
		for _, l := range labelsByXlinkLabel[arc.To] {
			key := concept + "|" + l.Role
			if _, exists := result[key]; exists {
				continue
			}
			result[key] = Label{Concept: concept, Role: l.Role, Lang: l.Lang, Text: l.Text}
		}
	}
	return result, nil
}

func attrValue(attrs []xml.Attr, name string) string {
	for _, a := range attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// conceptFromHref returns the fragment after the last '#' of an xlink:href:
// "us-gaap_Assets" for "us-gaap-2023.xsd#us-gaap_Assets", "Assets" for
// "#Assets". A prefix inside the fragment is kept.
func conceptFromHref(href string) string {
	for i := len(href) - 1; i >= 0; i-- {
		if href[i] == '#' {
			return href[i+1:]
		}
	}
	return href
}

// StandardLabelRole is the XBRL 2003 label role used when no more specific
// role (terse, total, period-start/end) is requested.
const StandardLabelRole = "http://www.xbrl.org/2003/role/label"
