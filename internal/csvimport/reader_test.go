package csvimport

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabian-plaehn/financeanalyzer/internal/logging"
	"github.com/fabian-plaehn/financeanalyzer/internal/models"
	"github.com/fabian-plaehn/financeanalyzer/internal/parsererror"
)

func TestNewAutoReader_GermanExport(t *testing.T) {
	input := "Buchungstag;Verwendungszweck;Name Zahlungsbeteiligter;Betrag\n" +
		"01.05.2023;Miete Mai;Vermieter GmbH;-800,00\n" +
		"02.05.2023;;REWE SAGT DANKE;-15,99\n"

	r, err := NewAutoReader(strings.NewReader(input), "giro", "test.csv", logging.NewNopLogger())
	require.NoError(t, err)

	transactions, dropped, err := ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, 0, dropped)
	require.Len(t, transactions, 2)

	first := transactions[0]
	assert.True(t, first.Date.Equal(time.Date(2023, time.May, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, first.Amount.Equal(decimal.RequireFromString("-800")))
	assert.Equal(t, "Miete Mai | Vermieter GmbH", first.Description)
	assert.Equal(t, "Vermieter GmbH", first.SenderReceiver)
	assert.Equal(t, "giro", first.Source)

	second := transactions[1]
	assert.Equal(t, "REWE SAGT DANKE", second.Description)
	assert.True(t, second.Amount.Equal(decimal.RequireFromString("-15.99")))
}

func TestNewAutoReader_DropsBadRows(t *testing.T) {
	input := "Datum,Beschreibung,Betrag\n" +
		"2023-05-01,Rent,-800.00\n" +
		"not-a-date,Broken,-1.00\n" +
		"2023-05-02,Groceries,abc\n" +
		"2023-05-03,Coffee,-3.50\n"

	r, err := NewAutoReader(strings.NewReader(input), "giro", "test.csv", logging.NewNopLogger())
	require.NoError(t, err)

	transactions, dropped, err := ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, 2, dropped)
	assert.Equal(t, 2, r.Dropped())
	require.Len(t, transactions, 2)
	assert.Equal(t, "Rent", transactions[0].Description)
	assert.Equal(t, "Coffee", transactions[1].Description)
}

func TestNewAutoReader_EmptyDescription(t *testing.T) {
	input := "Datum;Verwendungszweck;Betrag\n01.05.2023;;-1,00\n"

	r, err := NewAutoReader(strings.NewReader(input), "giro", "test.csv", logging.NewNopLogger())
	require.NoError(t, err)

	transactions, _, err := ReadAll(r)
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, "No Description", transactions[0].Description)
}

func TestNewAutoReader_UnmappableHeaders(t *testing.T) {
	input := "Foo;Bar\n1;2\n"

	_, err := NewAutoReader(strings.NewReader(input), "giro", "test.csv", logging.NewNopLogger())
	var mappingErr *parsererror.MappingError
	require.ErrorAs(t, err, &mappingErr)
	assert.Equal(t, "test.csv", mappingErr.File)
}

func strictConfig() models.ImportConfig {
	cfg := models.DefaultImportConfig()
	cfg.DateColumn = "Buchungstag"
	cfg.AmountColumn = "Betrag"
	cfg.DescriptionColumn = "Verwendungszweck"
	return cfg
}

func TestNewMappedReader_StrictParsing(t *testing.T) {
	input := "Buchungstag;Verwendungszweck;Betrag\n" +
		"01.05.2023;Miete;-800,00\n" +
		"02.05.2023;Einkauf;-1.234,56\n"

	r, err := NewMappedReader(strings.NewReader(input), strictConfig(), "giro", "test.csv", logging.NewNopLogger())
	require.NoError(t, err)

	transactions, dropped, err := ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, 0, dropped)
	require.Len(t, transactions, 2)
	assert.True(t, transactions[1].Amount.Equal(decimal.RequireFromString("-1234.56")))
}

func TestNewMappedReader_ByteOrderMark(t *testing.T) {
	input := "\xEF\xBB\xBFBuchungstag;Verwendungszweck;Betrag\n" +
		"01.05.2023;Miete;-800,00\n"

	r, err := NewMappedReader(strings.NewReader(input), strictConfig(), "giro", "test.csv", logging.NewNopLogger())
	require.NoError(t, err)

	transactions, _, err := ReadAll(r)
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, "Miete", transactions[0].Description)
}

func TestNewMappedReader_BadRowAborts(t *testing.T) {
	input := "Buchungstag;Verwendungszweck;Betrag\n" +
		"01.05.2023;Miete;-800,00\n" +
		"kaputt;Broken;-1,00\n"

	r, err := NewMappedReader(strings.NewReader(input), strictConfig(), "giro", "test.csv", logging.NewNopLogger())
	require.NoError(t, err)

	_, _, err = ReadAll(r)
	var rowErr *parsererror.RowError
	require.ErrorAs(t, err, &rowErr)
	// Row 1 is the header, so the second data row is file row 3.
	assert.Equal(t, 3, rowErr.Row)
}

func TestNewMappedReader_SkipRows(t *testing.T) {
	input := "Kontoauszug Mai 2023\n" +
		"Buchungstag;Verwendungszweck;Betrag\n" +
		"01.05.2023;Miete;-800,00\n"

	cfg := strictConfig()
	cfg.SkipRows = 1

	r, err := NewMappedReader(strings.NewReader(input), cfg, "giro", "test.csv", logging.NewNopLogger())
	require.NoError(t, err)

	transactions, _, err := ReadAll(r)
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, "Miete", transactions[0].Description)
}

func TestNewMappedReader_Latin1(t *testing.T) {
	input := "Buchungstag;Verwendungszweck;Betrag\n" +
		"01.05.2023;Geb\xFChren;-5,00\n"

	cfg := strictConfig()
	cfg.Encoding = "latin-1"

	r, err := NewMappedReader(strings.NewReader(input), cfg, "giro", "test.csv", logging.NewNopLogger())
	require.NoError(t, err)

	transactions, _, err := ReadAll(r)
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, "Gebühren", transactions[0].Description)
}

func TestPreview(t *testing.T) {
	input := "Buchungstag;Verwendungszweck;Betrag\n" +
		"01.05.2023;Miete;-800,00\n" +
		"02.05.2023;Einkauf;-15,99\n" +
		"03.05.2023;Kaffee;-3,50\n"

	headers, rows, err := Preview(strings.NewReader(input), nil, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"Buchungstag", "Verwendungszweck", "Betrag"}, headers)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"01.05.2023", "Miete", "-800,00"}, rows[0])
}

func TestPreview_WithConfig(t *testing.T) {
	input := "Vorspann\nBuchungstag;Betrag\n01.05.2023;-1,00\n"

	cfg := models.DefaultImportConfig()
	cfg.SkipRows = 1

	headers, rows, err := Preview(strings.NewReader(input), &cfg, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"Buchungstag", "Betrag"}, headers)
	require.Len(t, rows, 1)
}
