package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	assert.Equal(t, []string{"Name", "Address"}, DedupeAndTrim([]string{"  Name ", "Address", "Name", "", "  "}))
	assert.Empty(t, DedupeAndTrim(nil))
}

func TestFoldKey(t *testing.T) {
	assert.Equal(t, "acme corp", FoldKey(" ACME Corp\t"))
	assert.Equal(t, FoldKey("Acme Corp"), FoldKey(" acme corp "))
	// Inner whitespace is significant.
	assert.NotEqual(t, FoldKey("Acme  Corp"), FoldKey("Acme Corp"))
}
