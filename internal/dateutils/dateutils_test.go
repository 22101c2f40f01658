package dateutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabian-plaehn/financeanalyzer/internal/parsererror"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestLayout(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		want    string
		wantErr bool
	}{
		{name: "strptime german", format: "%d.%m.%Y", want: "02.01.2006"},
		{name: "strptime iso", format: "%Y-%m-%d", want: "2006-01-02"},
		{name: "go layout passthrough", format: "02.01.2006", want: "02.01.2006"},
		{name: "unsupported directive", format: "%Q", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Layout(tt.format)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		format  string
		want    time.Time
		wantErr bool
	}{
		{name: "strptime german format", raw: "14.12.2025", format: "%d.%m.%Y", want: day(2025, time.December, 14)},
		{name: "go layout", raw: "2025-12-14", format: LayoutISO, want: day(2025, time.December, 14)},
		{name: "leading whitespace", raw: " 01.05.2023", format: "%d.%m.%Y", want: day(2023, time.May, 1)},
		{name: "mismatched format", raw: "2025-12-14", format: "%d.%m.%Y", wantErr: true},
		{name: "impossible day", raw: "32.01.2025", format: "%d.%m.%Y", wantErr: true},
		{name: "empty value", raw: "", format: "%d.%m.%Y", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.raw, tt.format)
			if tt.wantErr {
				require.Error(t, err)
				var parseErr *parsererror.ParseError
				assert.ErrorAs(t, err, &parseErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %s, want %s", got, tt.want)
		})
	}
}

func TestParseAuto(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    time.Time
		wantErr bool
	}{
		{name: "german dotted", raw: "14.12.2025", want: day(2025, time.December, 14)},
		{name: "iso", raw: "2025-12-14", want: day(2025, time.December, 14)},
		{name: "iso with time dropped", raw: "2025-12-14 13:45:00", want: day(2025, time.December, 14)},
		{name: "slash day first", raw: "14/12/2025", want: day(2025, time.December, 14)},
		// 05/01/2023 is ambiguous; day-first wins.
		{name: "ambiguous prefers day first", raw: "05/01/2023", want: day(2023, time.January, 5)},
		// 12/25/2023 only parses month-first.
		{name: "us fallback", raw: "12/25/2023", want: day(2023, time.December, 25)},
		{name: "garbage", raw: "yesterday", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAuto(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %s, want %s", got, tt.want)
		})
	}
}
