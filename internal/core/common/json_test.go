package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type scored struct {
	Score int    `json:"score"`
	Label string `json:"label"`
}

func TestParseJSONStripsChatter(t *testing.T) {
	response := "Sure! Here is the JSON you asked for:\n```json\n{\"score\": 80, \"label\": \"ok\"}\n```\nHope that helps."

	got, err := ParseJSON[scored](response)

	assert.NoError(t, err)
	assert.Equal(t, scored{Score: 80, Label: "ok"}, got)
}

func TestParseJSONBareObject(t *testing.T) {
	got, err := ParseJSON[scored](`{"score": 5, "label": "x"}`)

	assert.NoError(t, err)
	assert.Equal(t, 5, got.Score)
}

func TestParseJSONNoObject(t *testing.T) {
	_, err := ParseJSON[scored]("I cannot produce JSON for that.")

	assert.Error(t, err)
}

func TestParseJSONInvalidObject(t *testing.T) {
	_, err := ParseJSON[scored]("{score: oops}")

	assert.Error(t, err)
}
