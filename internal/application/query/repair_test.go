package query

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeKeywords(t *testing.T, repaired string) []string {
	t.Helper()
	var q StructuredQuery
	require.NoError(t, json.Unmarshal([]byte(repaired), &q), repaired)
	return q.Keywords
}

func TestRepairJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"primed tail", `"keywords": ["soup"]}`, []string{"soup"}},
		{"complete object", `{"keywords": ["soup", "lentil"]}`, []string{"soup", "lentil"}},
		{"trailing tokens", `"keywords": ["soup"]}</s> Hope this helps!`, []string{"soup"}},
		{"markdown fence", "```json\n{\"keywords\": [\"curry\"]}\n```", []string{"curry"}},
		{"chatty prefix", `Sure! Here it is: {"keywords": ["curry"]}`, []string{"curry"}},
		{"echoed prompt", "Parse the query: 'curry'\nJSON: {\"keywords\": [\"curry\"]}", []string{"curry"}},
		{"truncated array", `"keywords": ["pizza", "mushroom"`, []string{"pizza", "mushroom"}},
		{"braces inside strings", `"keywords": ["mac {and} cheese"]} {"x": 1}`, []string{"mac {and} cheese"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repaired, err := RepairJSON(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, decodeKeywords(t, repaired))
		})
	}
}

func TestRepairJSON_EmptyOutput(t *testing.T) {
	_, err := RepairJSON("</s>  ")
	assert.ErrorIs(t, err, errNoObject)
}

func TestCutAfterObject(t *testing.T) {
	assert.Equal(t, `{"a": "}"}`, cutAfterObject(`{"a": "}"} tail`))
	assert.Equal(t, `{"a": [1`, cutAfterObject(`{"a": [1`))
}
