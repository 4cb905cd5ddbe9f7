package tracking

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	for i := 0; i < 100; i++ {
		id := Generate()
		assert.True(t, Pattern.MatchString(id), "generated id %q should match the tracking pattern", id)
		assert.Len(t, id, 5)

		n, err := strconv.Atoi(strings.TrimPrefix(id, Prefix))
		assert.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100)
		assert.LessOrEqual(t, n, 999)
	}
}

func TestGenerateWide(t *testing.T) {
	for i := 0; i < 20; i++ {
		id := GenerateWide()
		assert.True(t, Pattern.MatchString(id), "wide id %q should still be digits only", id)
		assert.Len(t, id, len(Prefix)+8)
	}
}

func TestIsTrackingID(t *testing.T) {
	tests := []struct {
		identifier string
		want       bool
	}{
		{"HD100", true},
		{"HD123456", true},
		{"HD", false},
		{"hd100", false},
		{"HD12A", false},
		{"user@example.com", false},
		{"", false},
		{" HD100", false},
	}

	for _, tt := range tests {
		t.Run(tt.identifier, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTrackingID(tt.identifier))
		})
	}
}
