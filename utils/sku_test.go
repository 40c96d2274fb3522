package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanSKU(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"Plain digits", "4321", "4321"},
		{"Strips letters", "SKU4321", "4321"},
		{"Strips leading zeros", "004321", "4321"},
		{"Lone zero preserved", "0", "0"},
		{"All zeros collapse to one", "000", "0"},
		{"Composite kept verbatim", "123-456", "123-456"},
		{"Composite keeps leading zeros", "0123-456", "0123-456"},
		{"Dots removed", "43.21", "4321"},
		{"Whitespace", "  4321  ", "4321"},
		{"Empty", "", ""},
		{"Only letters", "abc", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanSKU(tt.raw))
		})
	}
}

func TestCleanOrderID(t *testing.T) {
	assert.Equal(t, "2000001234567890", CleanOrderID("2000001234567890"))
	assert.Equal(t, "2000001234567890", CleanOrderID("#2000001234567890"))
	assert.Equal(t, "2000001234567890", CleanOrderID("2000001234567890.0"))
	assert.Equal(t, "", CleanOrderID("pedido"))
}

func TestSplitSKU(t *testing.T) {
	tests := []struct {
		name string
		sku  string
		want []string
	}{
		{"Hyphen", "123-456", []string{"123", "456"}},
		{"Slash", "123/456", []string{"123", "456"}},
		{"Plus", "123+456+789", []string{"123", "456", "789"}},
		{"Mixed separators", "123-456/789", []string{"123", "456", "789"}},
		{"Separator runs", "123--456", []string{"123", "456"}},
		{"Single part", "123", []string{"123"}},
		{"Empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitSKU(tt.sku))
		})
	}
}

func TestStripLeadingZeros(t *testing.T) {
	assert.Equal(t, "123", StripLeadingZeros("00123"))
	assert.Equal(t, "123", StripLeadingZeros("123"))
	assert.Equal(t, "0", StripLeadingZeros("0"))
	assert.Equal(t, "0", StripLeadingZeros("0000"))
	assert.Equal(t, "", StripLeadingZeros(""))
}
