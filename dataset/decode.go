package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/xuri/excelize/v2"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

var ErrEmptyDataset = errors.New("dataset has no header row")

// Spec identifies a remote dataset and how to read it.
type Spec struct {
	URL string
	// IndexColumn drops the leading unnamed row index written by pandas.
	IndexColumn bool
}

func (s Spec) Format() Format {
	p := s.URL
	if u, err := url.Parse(s.URL); err == nil && u.Path != "" {
		p = u.Path
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX
	}
	return FormatCSV
}

// Decode parses a fetched dataset body into a Frame.
func Decode(spec Spec, body []byte) (*Frame, error) {
	var (
		header []string
		rows   [][]string
		err    error
	)
	switch spec.Format() {
	case FormatXLSX:
		header, rows, err = readXLSX(bytes.NewReader(body))
	default:
		header, rows, err = readCSV(bytes.NewReader(body))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", spec.URL, err)
	}
	if spec.IndexColumn && len(header) > 0 {
		header = header[1:]
		for i, r := range rows {
			if len(r) > 0 {
				rows[i] = r[1:]
			}
		}
	}
	return NewFrame(header, rows), nil
}

func readCSV(r io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, ErrEmptyDataset
	}
	if err != nil {
		return nil, nil, err
	}
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	return header, rows, nil
}

func readXLSX(r io.Reader) ([]string, [][]string, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, err
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, ErrEmptyDataset
	}
	all, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, nil, err
	}
	if len(all) == 0 {
		return nil, nil, ErrEmptyDataset
	}
	return all[0], all[1:], nil
}
