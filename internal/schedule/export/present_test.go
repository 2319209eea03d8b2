package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresent(t *testing.T) {
	items := sampleItems()
	items[0].Title = "Rockets & <Jets>"

	out := Present(items, london)
	require.Len(t, out, 2)

	assert.Equal(t, "Rockets &amp; &lt;Jets&gt;", out[0].Text)
	assert.Equal(t, "stage-a", out[0].Venue)
	assert.Equal(t, "2016-08-05 14:00:00", out[0].StartDate)
	assert.Equal(t, `See <a href="https://emfcamp.org">https://emfcamp.org</a>.`, out[0].Description)
}

func TestUrlize(t *testing.T) {
	cases := map[string]string{
		"plain text":               "plain text",
		"<b>bold</b>":              "&lt;b&gt;bold&lt;/b&gt;",
		"go to www.emfcamp.org!":   `go to <a href="http://www.emfcamp.org">www.emfcamp.org</a>!`,
		"(http://a.example/x?y=1)": `(<a href="http://a.example/x?y=1">http://a.example/x?y=1</a>)`,
	}
	for in, want := range cases {
		assert.Equal(t, want, Urlize(in), in)
	}
}

func TestVenueColumns(t *testing.T) {
	cols := VenueColumns([]string{"Stage A", "Workshop 1"})
	assert.Equal(t, []VenueColumn{{Key: "stage-a", Label: "Stage A"}, {Key: "workshop-1", Label: "Workshop 1"}}, cols)
}
