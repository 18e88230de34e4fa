package fiscal_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secfilings/go-edgar-pipeline/fiscal"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"iso", "2023-09-30", "2023-09-30"},
		{"compact", "20230930", "2023-09-30"},
		{"slash_us", "09/30/2023", "2023-09-30"},
		{"slash_iso_order", "2023/09/30", "2023-09-30"},
		{"dash_us", "09-30-2023", "2023-09-30"},
		{"month_name", "September 30, 2023", "2023-09-30"},
		{"month_abbrev", "Sep 30, 2023", "2023-09-30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fiscal.Normalize(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	first, err := fiscal.Normalize("09/30/2023")
	require.NoError(t, err)

	second, err := fiscal.Normalize(first)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestNormalize_Invalid(t *testing.T) {
	tests := []string{"", "not-a-date", "2023-13-45", "99999999"}

	for _, raw := range tests {
		t.Run(raw, func(t *testing.T) {
			_, err := fiscal.Normalize(raw)
			require.Error(t, err)
			var fmtErr *fiscal.InvalidDateFormatError
			assert.ErrorAs(t, err, &fmtErr)
		})
	}
}
