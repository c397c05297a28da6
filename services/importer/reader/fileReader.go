package reader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/iulianpascalau/load-dashboard/services/importer/common"
	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/tidwall/gjson"
	"github.com/xuri/excelize/v2"
)

var log = logger.GetOrCreate("reader")

const utf8BOM = "\ufeff"

// ArgsFileReader defines the arguments needed to create a file reader
type ArgsFileReader struct {
	JSONRowsPath string
}

type fileReader struct {
	jsonRowsPath string
}

// NewFileReader creates a reader able to load .xlsx, .csv and .json result files
func NewFileReader(args ArgsFileReader) *fileReader {
	return &fileReader{
		jsonRowsPath: args.JSONRowsPath,
	}
}

// ReadTable loads the header row and the data rows of a result file. The sheet is only used for
// .xlsx files; when empty the first sheet is read.
func (r *fileReader) ReadTable(filePath string, sheet string) (*common.Table, error) {
	_, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("result file not found: %w", err)
	}

	var rows [][]string
	extension := strings.ToLower(filepath.Ext(filePath))
	switch extension {
	case ".xlsx", ".xlsm":
		rows, err = readXLSX(filePath, sheet)
	case ".csv":
		rows, err = readCSV(filePath)
	case ".json":
		rows, err = r.readJSON(filePath)
	default:
		return nil, errUnsupportedExtension(extension)
	}
	if err != nil {
		return nil, err
	}

	table := &common.Table{
		Headers: make([]string, 0),
		Rows:    make([][]string, 0),
	}
	if len(rows) == 0 {
		return table, nil
	}

	table.Headers = rows[0]
	table.Rows = rows[1:]

	log.Debug("result file read", "file", filePath, "columns", len(table.Headers), "rows", len(table.Rows))

	return table, nil
}

func readXLSX(filePath string, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	if len(sheet) == 0 {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	// raw values keep the stored numbers instead of their number-format display text
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	return rows, nil
}

func readCSV(filePath string) ([][]string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	csvReader := csv.NewReader(f)
	csvReader.FieldsPerRecord = -1
	csvReader.TrimLeadingSpace = true

	rows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], utf8BOM)
	}

	return rows, nil
}

// readJSON flattens an array of row objects into a header row followed by data rows. Headers
// keep the order in which keys are first seen.
func (r *fileReader) readJSON(filePath string) ([][]string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(data) {
		return nil, errors.New("invalid JSON result file")
	}

	result := gjson.ParseBytes(data)
	if len(r.jsonRowsPath) > 0 {
		result = result.Get(r.jsonRowsPath)
	}
	if !result.IsArray() {
		return nil, errRowsNotArray(r.jsonRowsPath)
	}

	headers := make([]string, 0)
	headerIndex := make(map[string]int)
	items := result.Array()
	for _, item := range items {
		if !item.IsObject() {
			continue
		}
		item.ForEach(func(key, _ gjson.Result) bool {
			if _, found := headerIndex[key.String()]; !found {
				headerIndex[key.String()] = len(headers)
				headers = append(headers, key.String())
			}
			return true
		})
	}

	rows := make([][]string, 0, len(items)+1)
	rows = append(rows, headers)
	for _, item := range items {
		row := make([]string, len(headers))
		if !item.IsObject() {
			rows = append(rows, row)
			continue
		}
		item.ForEach(func(key, value gjson.Result) bool {
			row[headerIndex[key.String()]] = value.String()
			return true
		})
		rows = append(rows, row)
	}

	return rows, nil
}

// IsInterfaceNil returns true if the value under the interface is nil
func (r *fileReader) IsInterfaceNil() bool {
	return r == nil
}
