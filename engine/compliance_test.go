package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateCompliance(t *testing.T) {
	tests := []struct {
		standard  string
		value     float64
		compliant bool
		ok        bool
	}{
		{"<= 30", 30, true, true},
		{"<= 30", 30.1, false, true},
		{"≤30", 12, true, true},
		{"< 5", 5, false, true},
		{"< 5", 4.9, true, true},
		{">= 6", 6, true, true},
		{"≥ 6", 5.9, false, true},
		{"> 0", 0, false, true},
		{"6-9", 7.2, true, true},
		{"6-9", 9.5, false, true},
		{"6 ~ 9", 5, false, true},
		{"-5-5", -2, true, true},
		{"100", 101, false, true},
		{"", 1, false, false},
		{"not detected", 0, false, false},
		{"<= abc", 1, false, false},
		{"9-6", 7, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.standard, func(t *testing.T) {
			compliant, ok := EvaluateCompliance(tt.standard, tt.value)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.compliant, compliant)
		})
	}
}

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "Acme Lab", sanitizeText(" <b>Acme</b> Lab<script>alert(1)</script> "))
	assert.Equal(t, "<= 30", sanitizeText("<= 30"))
	assert.Equal(t, "AT&T Labs", sanitizeText("AT&T Labs"))
}

func TestSanitizeTextDecodesEntitiesBeforeStripping(t *testing.T) {
	tests := []struct{ in, want string }{
		{"&lt;script&gt;alert(1)&lt;/script&gt;", ""},
		{"&lt;img src=x onerror=alert(1)&gt;Acme", "Acme"},
		{"&amp;lt;b&amp;gt;Acme&amp;lt;/b&amp;gt; Labs", "Acme Labs"},
		{"pH &lt; 9", "pH < 9"},
	}
	for _, tt := range tests {
		got := sanitizeText(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.NotContains(t, got, "<script", tt.in)
		assert.NotContains(t, got, "<img", tt.in)
		// the stored value is stable when sent back through the API
		assert.Equal(t, got, sanitizeText(got), tt.in)
	}
}
