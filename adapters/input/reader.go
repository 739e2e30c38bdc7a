package input

import (
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"ssea/internal"
	"ssea/internal/errors"

	"github.com/xuri/excelize/v2"
)

// ReaderConfig controls how a weights file is read
type ReaderConfig struct {
	// Header skips the first non-blank row
	Header bool
	// Sheet selects the worksheet of an .xlsx file; empty means the first one
	Sheet string
}

// DataReader reads (sample, weight) rows from tab-separated, comma-separated
// or Excel files
type DataReader struct {
	filePath string
	fileType FileType
	config   ReaderConfig
	logger   *internal.Logger
}

// NewDataReader creates a reader, choosing the format from the file extension.
// Anything other than .csv and .xlsx is read as tab-separated.
func NewDataReader(filePath string, config ReaderConfig, logger *internal.Logger) *DataReader {
	if logger == nil {
		logger = internal.NewDiscardLogger()
	}
	return &DataReader{
		filePath: filePath,
		fileType: DetectFileType(filePath),
		config:   config,
		logger:   logger,
	}
}

// DetectFileType maps a file extension to its layout
func DetectFileType(filePath string) FileType {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".csv":
		return FileCSV
	case ".xlsx":
		return FileXLSX
	default:
		return FileTSV
	}
}

// FileType returns the detected layout
func (r *DataReader) FileType() FileType {
	return r.fileType
}

// ReadWeights reads the weights table in file order
func (r *DataReader) ReadWeights() (Weights, error) {
	start := time.Now()
	r.logger.Debug("Reading %s weights file: %s", r.fileType, r.filePath)

	var (
		w   Weights
		err error
	)
	switch r.fileType {
	case FileXLSX:
		w, err = r.readExcel()
	case FileCSV:
		w, err = r.readDelimited(',')
	default:
		w, err = r.readDelimited('\t')
	}
	if err != nil {
		return Weights{}, err
	}

	r.logger.Debug("Read %d weights from %s in %.2fms", w.Len(), r.filePath,
		float64(time.Since(start).Nanoseconds())/1e6)
	return w, nil
}

func (r *DataReader) readDelimited(comma rune) (Weights, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return Weights{}, errors.IOError(r.filePath, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var rows []row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if stderrors.As(err, &perr) {
				return Weights{}, parseErrorf(r.filePath, perr.Line, "%v", perr.Err)
			}
			return Weights{}, errors.IOError(r.filePath, err)
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, row{line: line, fields: record})
	}
	return r.processRows(rows)
}

func (r *DataReader) readExcel() (Weights, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return Weights{}, errors.IOError(r.filePath, err)
	}
	defer f.Close()

	sheet := r.config.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return Weights{}, parseErrorf(r.filePath, 0, "workbook has no sheets")
		}
		sheet = sheets[0]
	}

	records, err := f.GetRows(sheet)
	if err != nil {
		return Weights{}, parseErrorf(r.filePath, 0, "failed to read sheet %s: %v", sheet, err)
	}

	rows := make([]row, len(records))
	for i, record := range records {
		rows[i] = row{line: i + 1, fields: record}
	}
	return r.processRows(rows)
}

type row struct {
	line   int
	fields []string
}

// processRows converts raw rows into a weights table. Blank rows are skipped;
// a row with a single field or a non-numeric weight fails.
func (r *DataReader) processRows(rows []row) (Weights, error) {
	var w Weights
	headerPending := r.config.Header

	for _, rw := range rows {
		fields := trimFields(rw.fields)
		if len(fields) == 0 {
			continue
		}
		if headerPending {
			headerPending = false
			continue
		}
		if len(fields) == 1 {
			return Weights{}, parseErrorf(r.filePath, rw.line, "only one field")
		}

		weight, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return Weights{}, parseErrorf(r.filePath, rw.line,
				"value %q cannot be converted to a floating point number", fields[1])
		}
		w.Samples = append(w.Samples, fields[0])
		w.Weights = append(w.Weights, weight)
	}

	if w.Len() == 0 {
		return Weights{}, parseErrorf(r.filePath, 0, "no weights found")
	}
	return w, nil
}

// trimFields trims every field and drops trailing empty ones
func trimFields(fields []string) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = strings.TrimSpace(f)
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}

// String describes the reader for log lines
func (r *DataReader) String() string {
	return fmt.Sprintf("%s(%s)", r.fileType, r.filePath)
}
