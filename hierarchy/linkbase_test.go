package hierarchy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secfilings/go-edgar-pipeline/hierarchy"
)

const samplePresentationLinkbase = `<?xml version="1.0" encoding="UTF-8"?>
<linkbase xmlns="http://www.xbrl.org/2003/linkbase" xmlns:xlink="http://www.w3.org/1999/xlink">
  <presentationLink xlink:role="http://acme.com/role/BalanceSheet">
    <loc xlink:label="loc_assets" xlink:href="acme-2023.xsd#us-gaap_Assets"/>
    <loc xlink:label="loc_assetscurrent" xlink:href="acme-2023.xsd#us-gaap_AssetsCurrent"/>
    <presentationArc xlink:from="loc_assets" xlink:to="loc_assetscurrent" order="1" arcrole="http://www.xbrl.org/2003/arcrole/parent-child"/>
  </presentationLink>
</linkbase>`

const sampleLabelLinkbase = `<?xml version="1.0" encoding="UTF-8"?>
<linkbase xmlns="http://www.xbrl.org/2003/linkbase" xmlns:xlink="http://www.w3.org/1999/xlink">
  <labelLink>
    <loc xlink:label="loc_assets" xlink:href="acme-2023.xsd#us-gaap_Assets"/>
    <label xlink:label="label_assets" xlink:role="http://www.xbrl.org/2003/role/label" xml:lang="en-US">Assets</label>
    <labelArc xlink:from="loc_assets" xlink:to="label_assets"/>
  </labelLink>
</linkbase>`

func TestParseLinkbase(t *testing.T) {
	arcsByRole, err := hierarchy.ParseLinkbase([]byte(samplePresentationLinkbase))
	require.NoError(t, err)

	arcs, ok := arcsByRole["http://acme.com/role/BalanceSheet"]
	require.True(t, ok)
	require.Len(t, arcs, 1)
	assert.Equal(t, "us-gaap_Assets", arcs[0].ParentConcept)
	assert.Equal(t, "us-gaap_AssetsCurrent", arcs[0].ChildConcept)
	assert.Equal(t, float64(1), arcs[0].Order)
}

func TestParseLinkbase_Malformed(t *testing.T) {
	_, err := hierarchy.ParseLinkbase([]byte("not xml at all <<<"))
	require.Error(t, err)
}

func TestParseLabelLinkbase(t *testing.T) {
	labels, err := hierarchy.ParseLabelLinkbase([]byte(sampleLabelLinkbase))
	require.NoError(t, err)

	key := "us-gaap_Assets|" + hierarchy.StandardLabelRole
	label, ok := labels[key]
	require.True(t, ok)
	assert.Equal(t, "Assets", label.Text)
	assert.Equal(t, "en-US", label.Lang)
}
