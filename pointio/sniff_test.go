package pointio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSniff(t *testing.T) {
	cases := []struct {
		name string
		data string
		want DocKind
	}{
		{"point set", pointSetJSON, DocPointSet},
		{"occurrences", occurrencesJSON, DocOccurrences},
		{"occurrences list", "[" + occurrencesJSON + "]", DocOccurrencesList},
		{"pattern set", `{"Prelude": {"point-set": ` + pointSetJSON + `, "patterns": []}}`, DocPatternSet},
		{"empty list", "[]", DocUnknown},
		{"foreign object", `{"title": "notes"}`, DocUnknown},
		{"scalar", "42", DocUnknown},
		{"invalid", "{", DocUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Sniff([]byte(tc.data)))
		})
	}
}

func TestDocKindString(t *testing.T) {
	assert.Equal(t, "point-set", DocPointSet.String())
	assert.Equal(t, "pattern occurrences", DocOccurrences.String())
	assert.Equal(t, "pattern occurrences list", DocOccurrencesList.String())
	assert.Equal(t, "pattern set", DocPatternSet.String())
	assert.Equal(t, "unknown", DocUnknown.String())
}
