package glossary

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text", "hello world", "hello world"},
		{"trims whitespace", "  hello  ", "hello"},
		{"strips tags", "<b>bold</b>", "bold"},
		{"strips script", "<script>alert('x')</script>safe", "safe"},
		{"strips anchor keeps text", `<a href="http://evil">click</a>`, "click"},
		{"whitespace only", "   \t\n  ", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanString(tt.input))
		})
	}
}
