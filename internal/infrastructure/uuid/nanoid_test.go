package uuid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNanoIDGenerator_Generate(t *testing.T) {
	gen := NewNanoIDGenerator(12)
	a, err := gen.Generate()
	assert.NoError(t, err)
	assert.Len(t, a, 12)

	b := gen.MustGenerate()
	assert.Len(t, b, 12)
	assert.NotEqual(t, a, b)
}

func TestNewNanoIDGenerator_InvalidLength(t *testing.T) {
	assert.Panics(t, func() { NewNanoIDGenerator(0) })
}
