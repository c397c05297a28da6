package reader

import (
	"fmt"
	"strings"
)

type errUnsupportedExtension string

func (e errUnsupportedExtension) Error() string {
	return "unsupported result file extension: " + string(e) + " (expected .xlsx, .csv or .json)"
}

type errRowsNotArray string

func (e errRowsNotArray) Error() string {
	if len(e) == 0 {
		return "JSON document root is not an array of rows"
	}

	return "JSON path does not hold an array of rows: " + string(e)
}

type errMissingColumns struct {
	missing []string
	found   []string
}

func (e *errMissingColumns) Error() string {
	return fmt.Sprintf("missing required columns: [%s]; found columns: [%s]; "+
		"expected headers like: Users load, Endpoint Name, Average Response, Min, Max",
		strings.Join(e.missing, ", "), strings.Join(e.found, ", "))
}
