package csvimport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabian-plaehn/financeanalyzer/internal/models"
	"github.com/fabian-plaehn/financeanalyzer/internal/parsererror"
)

func TestMapColumns(t *testing.T) {
	tests := []struct {
		name        string
		headers     []string
		wantDate    int
		wantAmount  int
		wantDesc    []int
		wantSender  int
		wantMissing []string
	}{
		{
			name:       "german bank export",
			headers:    []string{"Buchungstag", "Verwendungszweck", "Betrag"},
			wantDate:   0,
			wantAmount: 2,
			wantDesc:   []int{1},
			wantSender: -1,
		},
		{
			name:       "english headers",
			headers:    []string{"Date", "Description", "Amount"},
			wantDate:   0,
			wantAmount: 2,
			wantDesc:   []int{1},
			wantSender: -1,
		},
		{
			name:       "party column joins description and fills sender",
			headers:    []string{"Buchungstag", "Verwendungszweck", "Name Zahlungsbeteiligter", "Betrag"},
			wantDate:   0,
			wantAmount: 3,
			wantDesc:   []int{1, 2},
			wantSender: 2,
		},
		{
			name:       "case and whitespace insensitive",
			headers:    []string{"  DATUM ", "BETRAG", "INFO"},
			wantDate:   0,
			wantAmount: 1,
			wantDesc:   []int{2},
			wantSender: 2,
		},
		{
			name:        "missing amount",
			headers:     []string{"Buchungstag", "Verwendungszweck"},
			wantMissing: []string{"amount"},
		},
		{
			name:        "nothing recognizable",
			headers:     []string{"Foo", "Bar"},
			wantMissing: []string{"date", "amount"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cm, err := mapColumns(tt.headers, "test.csv")
			if len(tt.wantMissing) > 0 {
				require.Error(t, err)
				var mappingErr *parsererror.MappingError
				require.ErrorAs(t, err, &mappingErr)
				assert.Equal(t, tt.wantMissing, mappingErr.Missing)
				assert.Equal(t, tt.headers, mappingErr.Headers)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDate, cm.date)
			assert.Equal(t, tt.wantAmount, cm.amount)
			assert.Equal(t, tt.wantDesc, cm.description)
			assert.Equal(t, tt.wantSender, cm.sender)
		})
	}
}

func TestMapConfiguredColumns(t *testing.T) {
	headers := []string{"Buchungstag", "Verwendungszweck", "Betrag", "Beguenstigter"}

	cfg := models.DefaultImportConfig()
	cfg.DateColumn = "Buchungstag"
	cfg.AmountColumn = "Betrag"
	cfg.DescriptionColumn = "Verwendungszweck"
	cfg.SenderReceiverColumn = "Beguenstigter"

	cm, err := mapConfiguredColumns(headers, cfg, "test.csv")
	require.NoError(t, err)
	assert.Equal(t, 0, cm.date)
	assert.Equal(t, 2, cm.amount)
	assert.Equal(t, []int{1}, cm.description)
	assert.Equal(t, 3, cm.sender)
}

func TestMapConfiguredColumns_MissingColumn(t *testing.T) {
	headers := []string{"Buchungstag", "Betrag"}

	cfg := models.DefaultImportConfig()
	cfg.DateColumn = "Buchungstag"
	cfg.AmountColumn = "Betrag"
	cfg.DescriptionColumn = "Verwendungszweck"

	_, err := mapConfiguredColumns(headers, cfg, "test.csv")
	var mappingErr *parsererror.MappingError
	require.ErrorAs(t, err, &mappingErr)
	assert.Equal(t, []string{"Verwendungszweck"}, mappingErr.Missing)
}

func TestBuildDescription(t *testing.T) {
	record := []string{"01.05.2023", "Miete  Mai", "", "Vermieter GmbH"}

	assert.Equal(t, "Miete Mai | Vermieter GmbH", buildDescription(record, []int{1, 2, 3}))
	assert.Equal(t, "", buildDescription(record, []int{2}))
	// Out of range columns are ignored.
	assert.Equal(t, "Miete Mai", buildDescription(record, []int{1, 9}))
}
