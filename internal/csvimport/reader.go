package csvimport

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/fabian-plaehn/financeanalyzer/internal/dateutils"
	"github.com/fabian-plaehn/financeanalyzer/internal/logging"
	"github.com/fabian-plaehn/financeanalyzer/internal/models"
	"github.com/fabian-plaehn/financeanalyzer/internal/moneyutils"
	"github.com/fabian-plaehn/financeanalyzer/internal/parsererror"
)

// noDescription fills records whose description columns are all empty, so
// the canonical description is never blank.
const noDescription = "No Description"

type mode int

const (
	modeAuto mode = iota
	modeMapped
)

// Reader yields canonical transactions from a CSV stream, one per Next
// call. It is a forward-only pass; restart by re-opening the source.
type Reader struct {
	csv     *csv.Reader
	columns columnMap
	mode    mode
	source  string
	file    string

	dateFormat   string
	amountFormat moneyutils.Format

	logger  logging.Logger
	row     int // current 1-indexed file row, header and skipped rows included
	dropped int
}

// NewAutoReader builds a best-effort reader: framing is detected, headers
// are mapped through the candidate lists, and rows whose date or amount
// cannot be parsed are dropped and counted instead of failing the file.
func NewAutoReader(r io.Reader, source, file string, logger logging.Logger) (*Reader, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", file, err)
	}

	settings, err := DetectSettings(data)
	if err != nil {
		return nil, err
	}
	decoded, err := decodeBytes(data, settings.Encoding)
	if err != nil {
		return nil, fmt.Errorf("decoding %s as %s: %w", file, settings.Encoding, err)
	}

	logger.WithFields(
		logging.Field{Key: logging.FieldFile, Value: file},
		logging.Field{Key: logging.FieldDelimiter, Value: string(settings.Delimiter)},
		logging.Field{Key: logging.FieldEncoding, Value: settings.Encoding},
	).Debug("Detected CSV framing")

	cr := newCSVReader(strings.NewReader(decoded), settings.Delimiter)
	headers, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading headers of %s: %w", file, err)
	}
	columns, err := mapColumns(headers, file)
	if err != nil {
		return nil, err
	}

	return &Reader{
		csv:     cr,
		columns: columns,
		mode:    modeAuto,
		source:  source,
		file:    file,
		logger:  logger,
		row:     1,
	}, nil
}

// NewMappedReader builds a strict reader driven by a saved ImportConfig.
// Missing configured columns fail with a MappingError; the first bad row
// aborts the file with a RowError carrying the 1-indexed row number.
func NewMappedReader(r io.Reader, cfg models.ImportConfig, source, file string, logger logging.Logger) (*Reader, error) {
	decoder, err := decoderFor(cfg.Encoding)
	if err != nil {
		return nil, err
	}
	if decoder != nil {
		r = decoder.Reader(r)
	}

	buffered := bufio.NewReader(r)
	for i := 0; i < cfg.SkipRows; i++ {
		if _, err := buffered.ReadString('\n'); err != nil {
			return nil, fmt.Errorf("skipping %d rows of %s: %w", cfg.SkipRows, file, err)
		}
	}

	delimiter := ';'
	if cfg.Delimiter != "" {
		delimiter = []rune(cfg.Delimiter)[0]
	}

	cr := newCSVReader(buffered, delimiter)
	headers, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading headers of %s: %w", file, err)
	}
	columns, err := mapConfiguredColumns(stripBOM(headers), cfg, file)
	if err != nil {
		return nil, err
	}

	return &Reader{
		csv:        cr,
		columns:    columns,
		mode:       modeMapped,
		source:     source,
		file:       file,
		dateFormat: cfg.DateFormat,
		amountFormat: moneyutils.Format{
			DecimalSeparator:   cfg.DecimalSeparator,
			ThousandsSeparator: cfg.ThousandsSeparator,
		},
		logger: logger,
		row:    cfg.SkipRows + 1,
	}, nil
}

// Next returns the next canonical transaction, or io.EOF when the stream is
// exhausted. In auto mode bad rows are skipped; in mapped mode they abort.
func (r *Reader) Next() (*models.Transaction, error) {
	for {
		record, err := r.csv.Read()
		if err == io.EOF {
			return nil, io.EOF
		}
		r.row++
		if err == nil {
			var tx *models.Transaction
			tx, err = r.makeTransaction(record)
			if err == nil {
				return tx, nil
			}
		}

		if r.mode == modeMapped {
			return nil, &parsererror.RowError{Row: r.row, Err: err}
		}

		r.dropped++
		r.logger.WithError(err).WithFields(
			logging.Field{Key: logging.FieldFile, Value: r.file},
			logging.Field{Key: logging.FieldRow, Value: r.row},
		).Debug("Dropping unparseable row")
	}
}

// Dropped returns how many rows were skipped so far in best-effort mode.
func (r *Reader) Dropped() int {
	return r.dropped
}

func (r *Reader) makeTransaction(record []string) (*models.Transaction, error) {
	rawDate, err := fieldValue(record, r.columns.date, "date")
	if err != nil {
		return nil, err
	}
	rawAmount, err := fieldValue(record, r.columns.amount, "amount")
	if err != nil {
		return nil, err
	}

	tx := &models.Transaction{Source: r.source}

	if r.mode == modeMapped {
		tx.Date, err = dateutils.Parse(rawDate, r.dateFormat)
	} else {
		tx.Date, err = dateutils.ParseAuto(rawDate)
	}
	if err != nil {
		return nil, err
	}

	if r.mode == modeMapped {
		tx.Amount, err = moneyutils.Parse(rawAmount, r.amountFormat)
	} else {
		tx.Amount, err = moneyutils.ParseAuto(rawAmount)
	}
	if err != nil {
		return nil, err
	}

	tx.Description = buildDescription(record, r.columns.description)
	if tx.Description == "" {
		tx.Description = noDescription
	}
	if r.columns.sender >= 0 && r.columns.sender < len(record) {
		tx.SenderReceiver = models.NormalizeDescription(record[r.columns.sender])
	}

	return tx, nil
}

// ReadAll drains a reader, returning the records plus the dropped-row count.
func ReadAll(r *Reader) ([]models.Transaction, int, error) {
	var transactions []models.Transaction
	for {
		tx, err := r.Next()
		if err == io.EOF {
			return transactions, r.Dropped(), nil
		}
		if err != nil {
			return nil, r.Dropped(), err
		}
		transactions = append(transactions, *tx)
	}
}

// Preview returns a file's headers and up to maxRows raw data rows without
// converting anything, for showing the user what an import would read.
func Preview(r io.Reader, cfg *models.ImportConfig, maxRows int) ([]string, [][]string, error) {
	var cr *csv.Reader
	if cfg == nil {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, nil, err
		}
		settings, err := DetectSettings(data)
		if err != nil {
			return nil, nil, err
		}
		decoded, err := decodeBytes(data, settings.Encoding)
		if err != nil {
			return nil, nil, err
		}
		cr = newCSVReader(strings.NewReader(decoded), settings.Delimiter)
	} else {
		decoder, err := decoderFor(cfg.Encoding)
		if err != nil {
			return nil, nil, err
		}
		if decoder != nil {
			r = decoder.Reader(r)
		}
		buffered := bufio.NewReader(r)
		for i := 0; i < cfg.SkipRows; i++ {
			if _, err := buffered.ReadString('\n'); err != nil {
				return nil, nil, err
			}
		}
		delimiter := ';'
		if cfg.Delimiter != "" {
			delimiter = []rune(cfg.Delimiter)[0]
		}
		cr = newCSVReader(buffered, delimiter)
	}

	headers, err := cr.Read()
	if err != nil {
		return nil, nil, err
	}
	headers = stripBOM(headers)

	var rows [][]string
	for len(rows) < maxRows {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		rows = append(rows, record)
	}
	return headers, rows, nil
}

func newCSVReader(r io.Reader, delimiter rune) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = delimiter
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	return cr
}

func fieldValue(record []string, index int, field string) (string, error) {
	if index < 0 || index >= len(record) {
		return "", &parsererror.ParseError{
			Field: field, Value: "", Err: fmt.Errorf("column %d missing in record", index),
		}
	}
	return record[index], nil
}
