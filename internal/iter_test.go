package internal

import (
	"maps"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIterSeq2Concat(t *testing.T) {
	assert := assert.New(t)

	first := slices.All([]string{"a", "b"})
	second := slices.All([]string{"c"})

	var keys []int
	var values []string
	for key, value := range IterSeq2Concat(first, second) {
		keys = append(keys, key)
		values = append(values, value)
	}
	assert.Equal([]int{0, 1, 0}, keys)
	assert.Equal([]string{"a", "b", "c"}, values)

	// Early stop from the consumer.
	values = nil
	for _, value := range IterSeq2Concat(first, second) {
		values = append(values, value)
		if value == "b" {
			break
		}
	}
	assert.Equal([]string{"a", "b"}, values)

	merged := maps.Collect(IterSeq2Concat[string, string]())
	assert.Empty(merged)
}
