// Package csvimport reads transaction rows from delimited text.
//
// The expected columns are title, type, value and category, in that order.
// The first line is a header and is ignored. Cells are trimmed; rows missing
// a title, type or value are skipped and counted.
package csvimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"fintrack/internal/models"
)

// DefaultCategory is used for rows whose category cell is empty.
const DefaultCategory = "Uncategorized"

var columnNames = [...]string{"title", "type", "value", "category"}

const (
	columns          = len(columnNames)
	defaultBatchSize = 500
)

var (
	errUnknownType = errors.New("must be income or outcome")
	errNotNumber   = errors.New("not a number")
	errNegative    = errors.New("must not be negative")
	errTooLarge    = fmt.Errorf("must not exceed %s", models.MaxValue)
)

// TypeCell decodes the type column.
type TypeCell models.TransactionType

// UnmarshalCSV implements gocsv.TypeUnmarshaller.
func (c *TypeCell) UnmarshalCSV(s string) error {
	t, ok := models.ParseTransactionType(s)
	if !ok {
		return errUnknownType
	}
	*c = TypeCell(t)
	return nil
}

// Amount decodes the value column: a non-negative number that fits a
// transaction value.
type Amount struct {
	value decimal.Decimal
}

// UnmarshalCSV implements gocsv.TypeUnmarshaller.
func (a *Amount) UnmarshalCSV(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return errNotNumber
	}
	if d.IsNegative() {
		return errNegative
	}
	if d.GreaterThan(models.MaxValue) {
		return errTooLarge
	}
	a.value = d
	return nil
}

// Decimal returns the decoded value.
func (a Amount) Decimal() decimal.Decimal {
	return a.value
}

// Row is one decoded record, in column order.
type Row struct {
	Title    string   `csv:"title"`
	Type     TypeCell `csv:"type"`
	Value    Amount   `csv:"value"`
	Category string   `csv:"category"`
}

// Record is a validated row ready to become a transaction.
type Record struct {
	Line     int
	Title    string
	Type     models.TransactionType
	Value    decimal.Decimal
	Category string
}

func (r *Row) record(line int) Record {
	category := r.Category
	if category == "" {
		category = DefaultCategory
	}
	return Record{
		Line:     line,
		Title:    r.Title,
		Type:     models.TransactionType(r.Type),
		Value:    r.Value.Decimal(),
		Category: category,
	}
}

// Option configures a Reader.
type Option func(*Reader)

// WithDelimiter sets the field delimiter (default ',').
func WithDelimiter(delim rune) Option {
	return func(r *Reader) { r.csv.Comma = delim }
}

// WithBatchSize sets the maximum number of records returned by Next.
func WithBatchSize(n int) Option {
	return func(r *Reader) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// Reader yields validated records in batches.
type Reader struct {
	csv        *csv.Reader
	batchSize  int
	headerRead bool
	done       bool
	skipped    int
}

// NewReader returns a Reader over in.
func NewReader(in io.Reader, opts ...Option) *Reader {
	cr := csv.NewReader(in)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = false

	r := &Reader{csv: cr, batchSize: defaultBatchSize}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Skipped returns the number of incomplete rows skipped so far.
func (r *Reader) Skipped() int {
	return r.skipped
}

// Next returns up to the batch size of records. It returns io.EOF once the
// input is exhausted and no records remain.
func (r *Reader) Next() ([]Record, error) {
	if !r.headerRead {
		r.headerRead = true
		if _, err := r.csv.Read(); err != nil {
			if errors.Is(err, io.EOF) {
				r.done = true
				return nil, io.EOF
			}
			return nil, r.readError(err)
		}
	}

	for !r.done {
		records, err := r.readBatch()
		if err != nil {
			return nil, err
		}
		// Skipped rows do not count toward a batch, so only the tail can be empty.
		if len(records) > 0 {
			return records, nil
		}
	}
	return nil, io.EOF
}

func (r *Reader) readBatch() ([]Record, error) {
	raw := make([][]string, 0, r.batchSize)
	lines := make([]int, 0, r.batchSize)
	for len(raw) < r.batchSize {
		fields, err := r.csv.Read()
		if errors.Is(err, io.EOF) {
			r.done = true
			break
		}
		if err != nil {
			return nil, r.readError(err)
		}
		line, _ := r.csv.FieldPos(0)
		cells := normalize(fields)
		if incomplete(cells) {
			r.skipped++
			continue
		}
		raw = append(raw, cells)
		lines = append(lines, line)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var rows []Row
	if err := gocsv.UnmarshalCSVWithoutHeaders(&batchSource{records: raw}, &rows); err != nil {
		return nil, decodeError(err, raw, lines)
	}

	records := make([]Record, len(rows))
	for i := range rows {
		records[i] = rows[i].record(lines[i])
	}
	return records, nil
}

// decodeError maps a gocsv failure, whose line is the index within the
// batch, back to the input line and column.
func decodeError(err error, raw [][]string, lines []int) error {
	var csvErr *csv.ParseError
	if errors.As(err, &csvErr) && csvErr.Line >= 1 && csvErr.Line <= len(lines) &&
		csvErr.Column >= 1 && csvErr.Column <= columns {
		row, col := csvErr.Line-1, csvErr.Column-1
		return &ParseError{
			Line:  lines[row],
			Field: columnNames[col],
			Value: raw[row][col],
			Err:   csvErr.Err,
		}
	}
	return &ParseError{Line: lines[0], Err: fmt.Errorf("decoding rows: %w", err)}
}

func (r *Reader) readError(err error) error {
	var csvErr *csv.ParseError
	if errors.As(err, &csvErr) {
		return &ParseError{Line: csvErr.Line, Err: csvErr.Err}
	}
	return &ParseError{Err: err}
}

// normalize trims every cell and pads or cuts the record to the known columns.
func normalize(fields []string) []string {
	out := make([]string, columns)
	for i := 0; i < columns && i < len(fields); i++ {
		out[i] = strings.TrimSpace(fields[i])
	}
	return out
}

func incomplete(cells []string) bool {
	return cells[0] == "" || cells[1] == "" || cells[2] == ""
}

// batchSource feeds already-read records to gocsv.
type batchSource struct {
	records [][]string
	pos     int
}

func (b *batchSource) Read() ([]string, error) {
	if b.pos >= len(b.records) {
		return nil, io.EOF
	}
	rec := b.records[b.pos]
	b.pos++
	return rec, nil
}

func (b *batchSource) ReadAll() ([][]string, error) {
	rest := b.records[b.pos:]
	b.pos = len(b.records)
	return rest, nil
}
