package edgar

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Extraction wraps a parsed XBRL document with degraded-mode bookkeeping the
// plain XBRL and ix:resources paths never need: some inline filings carry
// ix:nonFraction/ix:nonNumeric facts but define no contexts at all. When a
// document yields no contexts, contexts are synthesized from whatever the
// context-id naming convention reveals, and the filing is flagged so
// downstream stages can attach a diagnostic instead of failing. A document
// that defines some contexts gets no synthesis for the ones it lacks.
type Extraction struct {
	*XBRL
	ContextsSynthetic bool
	Warnings          []ValidationWarning
}

// ParseInlineXBRL parses an inline XBRL (iXBRL) document embedded in HTML.
// It walks the document with a tolerant HTML5 parser rather than
// encoding/xml, since real EDGAR primary documents are HTML, not XHTML, and
// an XML decoder chokes on unescaped ampersands, unclosed <br>, etc.
func ParseInlineXBRL(data []byte) (*Extraction, error) {
	xbrl := &XBRL{}

	if err := extractResources(xbrl, data); err != nil {
		return nil, &ExtractError{Stage: "resources", Err: err}
	}

	facts, err := extractInlineFactsHTML(data)
	if err != nil {
		return nil, &ExtractError{Stage: "facts", Err: err}
	}
	xbrl.Facts = facts

	ext := &Extraction{XBRL: xbrl}

	if len(xbrl.Contexts) == 0 && len(facts) > 0 {
		synthesizeContexts(ext)
	}

	if err := resolveFacts(xbrl); err != nil {
		return nil, &ExtractError{Stage: "resolve", Err: err}
	}

	return ext, nil
}

// synthesizeContexts builds placeholder Context entries from context-id
// naming conventions when ix:resources never defined them. Facts referring
// to contexts that still can't be resolved keep an empty Period rather than
// aborting the filing.
func synthesizeContexts(ext *Extraction) {
	handlers := NewContextIDHandlers()
	seen := make(map[string]bool)
	for _, f := range ext.Facts {
		if f.ContextRef == "" || seen[f.ContextRef] {
			continue
		}
		seen[f.ContextRef] = true

		info := ExtractContextPeriod(handlers, f.ContextRef)
		if info.isZero() {
			continue
		}
		ext.Contexts = append(ext.Contexts, Context{
			ID: f.ContextRef,
			Period: Period{
				Instant:   info.Instant,
				StartDate: info.StartDate,
				EndDate:   info.EndDate,
			},
		})
	}

	ext.ContextsSynthetic = true
	ext.Warnings = append(ext.Warnings, ValidationWarning{
		Code:    "SYNTHETIC_CONTEXTS",
		Message: fmt.Sprintf("ix:resources absent; synthesized %d context(s) from context-id conventions", len(ext.Contexts)),
	})
}

// extractResources extracts contexts and units from the ix:resources
// section. Plain XBRL instance syntax nested in the iXBRL wrapper, so the
// stdlib XML decoder handles it fine once we're scoped to that subtree.
func extractResources(xbrl *XBRL, data []byte) error {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.Strict = false
	decoder.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	inResources := false

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		switch elem := token.(type) {
		case xml.StartElement:
			if elem.Name.Local == "resources" {
				inResources = true
				continue
			}

			if !inResources {
				continue
			}

			if elem.Name.Local == "context" {
				var ctx Context
				if err := decoder.DecodeElement(&ctx, &elem); err != nil {
					continue
				}
				xbrl.Contexts = append(xbrl.Contexts, ctx)
			}

			if elem.Name.Local == "unit" {
				var unit Unit
				if err := decoder.DecodeElement(&unit, &elem); err != nil {
					continue
				}
				xbrl.Units = append(xbrl.Units, unit)
			}

		case xml.EndElement:
			if elem.Name.Local == "resources" {
				inResources = false
			}
		}
	}

	return nil
}

// extractInlineFactsHTML walks the document with golang.org/x/net/html and
// collects every ix:nonFraction / ix:nonNumeric element, including those
// hidden in an ix:hidden section (style="display:none", never rendered but
// still a fact the filer intends readers to have).
func extractInlineFactsHTML(data []byte) ([]Fact, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	var facts []Fact
	var hidden bool

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && isIXNamespace(n.Data) {
			local := strings.ToLower(localName(n.Data))
			switch local {
			case "hidden":
				prevHidden := hidden
				hidden = true
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					walk(c)
				}
				hidden = prevHidden
				return
			case "nonfraction", "nonnumeric":
				if f, ok := factFromNode(n, local == "nonnumeric", hidden); ok {
					facts = append(facts, f)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return facts, nil
}

// isIXNamespace reports whether a tag name carries the ix: prefix net/html
// preserves verbatim in Data for unrecognized namespaces.
func isIXNamespace(tag string) bool {
	return strings.HasPrefix(tag, "ix:")
}

func localName(tag string) string {
	if i := strings.IndexByte(tag, ':'); i >= 0 {
		return tag[i+1:]
	}
	return tag
}

func nodeAttr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name || strings.EqualFold(a.Key, name) {
			return a.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func factFromNode(n *html.Node, nonNumeric, hidden bool) (Fact, bool) {
	contextRef := nodeAttr(n, "contextref")
	if contextRef == "" {
		return Fact{}, false
	}
	name := nodeAttr(n, "name")
	if name == "" {
		return Fact{}, false
	}

	decimals := 0
	if d := nodeAttr(n, "decimals"); d != "" && d != "INF" {
		decimals, _ = strconv.Atoi(d)
	}
	scale := 0
	if s := nodeAttr(n, "scale"); s != "" {
		scale, _ = strconv.Atoi(s)
	}

	fact := Fact{
		Concept:    normalizeIXConceptName(name),
		Value:      strings.TrimSpace(nodeText(n)),
		ContextRef: contextRef,
		UnitRef:    nodeAttr(n, "unitref"),
		Decimals:   decimals,
		Scale:      scale,
		Sign:       nodeAttr(n, "sign"),
		Format:     nodeAttr(n, "format"),
		Hidden:     hidden,
		NonNumeric: nonNumeric,
	}
	return fact, true
}

// normalizeIXConceptName rewrites ix:nonFraction/nonNumeric "name" values
// (already namespace-prefixed, e.g. "us-gaap:Assets") to the same
// "prefix:LocalName" shape plain-XBRL facts use.
func normalizeIXConceptName(name string) string {
	return name
}

// DetectXBRLType determines if the data is inline XBRL or standalone XBRL.
func DetectXBRLType(data []byte) string {
	content := string(data)

	if strings.Contains(content, "xmlns:ix=") ||
		strings.Contains(content, "<ix:") ||
		strings.Contains(content, "inlineXBRL") ||
		strings.Contains(content, "ix:hidden") {
		return "inline"
	}

	if strings.Contains(content, "<xbrl") ||
		strings.Contains(content, "xmlns:xbrli=") {
		return "standalone"
	}

	return "unknown"
}

// ParseXBRLAuto automatically detects and parses inline or standalone XBRL,
// always returning an *Extraction so callers have one return type regardless
// of which path ran.
func ParseXBRLAuto(data []byte) (*Extraction, error) {
	switch DetectXBRLType(data) {
	case "inline":
		return ParseInlineXBRL(data)
	case "standalone":
		x, err := ParseXBRL(data)
		if err != nil {
			return nil, err
		}
		return &Extraction{XBRL: x}, nil
	default:
		return nil, &ExtractError{Stage: "detect", Err: fmt.Errorf("unable to detect XBRL type")}
	}
}
