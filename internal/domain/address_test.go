package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddress(t *testing.T) {
	tests := []struct {
		name      string
		addr      Address
		isNumeric bool
		display   string
	}{
		{
			name:      "numeric",
			addr:      Numeric(12345),
			isNumeric: true,
			display:   "12345",
		},
		{
			name:      "handle",
			addr:      ByHandle("alice"),
			isNumeric: false,
			display:   "@alice",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.isNumeric, tt.addr.IsNumeric())
			assert.Equal(t, tt.display, tt.addr.String())
		})
	}
}
