package search

import (
	"bufio"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeHits(t *testing.T) {
	body := `{"hits":{"total":{"value":3},"hits":[{"_id":"12"},{"_id":"not-a-number"},{"_id":"3"}]}}`
	ids, err := decodeHits(strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, []uint{12, 3}, ids)
}

func TestBulkBody(t *testing.T) {
	buf, err := bulkBody("courses", []CourseDocument{{ID: 1, Title: "Go"}, {ID: 2, Title: "SQL"}})
	require.NoError(t, err)

	var lines []string
	scanner := bufio.NewScanner(buf)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.Len(t, lines, 4)

	var action map[string]map[string]string
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &action))
	assert.Equal(t, "2", action["index"]["_id"])
	assert.Equal(t, "courses", action["index"]["_index"])
	assert.Contains(t, lines[3], `"title":"SQL"`)
}

func TestSearchQueryBoostsTitle(t *testing.T) {
	q := searchQuery("golang", 25)
	assert.Equal(t, 25, q["size"])
	mm := q["query"].(map[string]interface{})["multi_match"].(map[string]interface{})
	assert.Contains(t, mm["fields"], "title^3")
}
