package pointio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/otsob/musii-kit/pointset"
)

// CSVOptions control point CSV parsing.
type CSVOptions struct {
	// OnsetColumn is the index of the onset column.
	OnsetColumn int

	// PitchColumn is the index of the pitch column.
	PitchColumn int

	// SkipRows is the number of leading rows to discard, for files
	// with non-comment headers.
	SkipRows int

	// Comma is the field delimiter. Defaults to ','.
	Comma rune
}

// DefaultCSVOptions for point CSV parsing.
var DefaultCSVOptions = CSVOptions{PitchColumn: 1, Comma: ','}

func applyCSVOptions(optFns []func(o *CSVOptions)) CSVOptions {
	opts := DefaultCSVOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Comma == 0 {
		opts.Comma = ','
	}
	return opts
}

// ReadCSVTableFrom reads a numeric table from CSV. Lines starting with
// '#' are comments. Rows may have differing column counts; fields are
// trimmed before parsing. The name selects the compression by its file
// extension.
func ReadCSVTableFrom(r io.Reader, name string, optFns ...func(o *CSVOptions)) ([][]float64, error) {
	opts := applyCSVOptions(optFns)
	rc, err := WrapReader(r, CompressionForPath(name))
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	cr := csv.NewReader(rc)
	cr.Comma = opts.Comma
	cr.Comment = '#'
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	var table [][]float64
	for row := 0; ; row++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if row < opts.SkipRows {
			continue
		}
		values := make([]float64, len(record))
		for i, field := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("csv row %d column %d: %w", row, i, err)
			}
			values[i] = v
		}
		table = append(table, values)
	}
	return table, nil
}

// ReadCSVFrom reads a point set from CSV, taking onsets and pitches
// from the configured columns.
func ReadCSVFrom(r io.Reader, name string, optFns ...func(o *CSVOptions)) (*pointset.PointSet, error) {
	opts := applyCSVOptions(optFns)
	table, err := ReadCSVTableFrom(r, name, optFns...)
	if err != nil {
		return nil, err
	}
	rows := make([][]float64, len(table))
	for i, record := range table {
		if opts.OnsetColumn >= len(record) || opts.PitchColumn >= len(record) {
			return nil, fmt.Errorf("csv row %d has %d columns, need onset column %d and pitch column %d",
				i, len(record), opts.OnsetColumn, opts.PitchColumn)
		}
		rows[i] = []float64{record[opts.OnsetColumn], record[opts.PitchColumn]}
	}
	return pointset.FromPairs(rows)
}

// ReadCSV reads a point set from the CSV file at path.
func ReadCSV(path string, optFns ...func(o *CSVOptions)) (*pointset.PointSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSVFrom(f, path, optFns...)
}

// CSVWriteOptions control point CSV output.
type CSVWriteOptions struct {
	// Decimals is the number of decimal places written per component.
	Decimals int
}

// DefaultCSVWriteOptions for point CSV output.
var DefaultCSVWriteOptions = CSVWriteOptions{Decimals: 2}

// WriteCSVTo writes the point set to w as two-column CSV with a "# x, y"
// header line. The name selects the compression by its file extension.
func WriteCSVTo(w io.Writer, name string, ps *pointset.PointSet, optFns ...func(o *CSVWriteOptions)) error {
	opts := DefaultCSVWriteOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	wc, err := WrapWriter(w, CompressionForPath(name))
	if err != nil {
		return err
	}
	err = writeCSVRows(wc, ps, opts.Decimals)
	if cerr := wc.Close(); err == nil {
		err = cerr
	}
	return err
}

// WriteCSV writes the point set to the CSV file at path.
func WriteCSV(path string, ps *pointset.PointSet, optFns ...func(o *CSVWriteOptions)) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteCSVTo(w, path, ps, optFns...)
	})
}

func writeCSVRows(w io.Writer, ps *pointset.PointSet, decimals int) error {
	if _, err := io.WriteString(w, "# x, y\n"); err != nil {
		return err
	}
	format := fmt.Sprintf("%%.%df, %%.%df\n", decimals, decimals)
	for _, pair := range ps.AsPairs() {
		if _, err := fmt.Fprintf(w, format, pair[0], pair[1]); err != nil {
			return err
		}
	}
	return nil
}
