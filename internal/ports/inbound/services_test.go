package inbound

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexibleID_AcceptsNumbersAndStrings(t *testing.T) {
	var fromNumber RecommendCommand
	require.NoError(t, json.Unmarshal([]byte(`{"user_id": 1, "query_text": "pasta"}`), &fromNumber))
	assert.Equal(t, "1", fromNumber.UserID.String())

	var fromString RecommendCommand
	require.NoError(t, json.Unmarshal([]byte(`{"user_id": " u-42 ", "query_text": "pasta"}`), &fromString))
	assert.Equal(t, "u-42", fromString.UserID.String())
}

func TestFlexibleID_RejectsObjects(t *testing.T) {
	var cmd RecommendCommand
	assert.Error(t, json.Unmarshal([]byte(`{"user_id": {"id": 1}}`), &cmd))
}
