package data

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ReadLabelGrid parses a comma separated integer matrix. Values written as
// floats ("3.0") are accepted as long as they are whole numbers.
func ReadLabelGrid(r io.Reader) ([][]int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "reading label grid")
	}
	if len(records) == 0 {
		return nil, errors.New("label grid is empty")
	}
	grid := make([][]int, len(records))
	for y, record := range records {
		row := make([]int, len(record))
		for x, field := range record {
			v, err := parseLabel(field)
			if err != nil {
				return nil, errors.Wrapf(err, "row %d col %d", y, x)
			}
			row[x] = v
		}
		grid[y] = row
	}
	return grid, nil
}

func parseLabel(field string) (int, error) {
	field = strings.TrimSpace(field)
	if v, err := strconv.Atoi(field); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return 0, err
	}
	if f != float64(int(f)) {
		return 0, errors.Errorf("label %q is not a whole number", field)
	}
	return int(f), nil
}

// WriteLabelGrid writes grid as a comma separated integer matrix.
func WriteLabelGrid(w io.Writer, grid [][]int) error {
	writer := csv.NewWriter(w)
	for _, row := range grid {
		record := make([]string, len(row))
		for x, v := range row {
			record[x] = strconv.Itoa(v)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadLabelGridFile reads a label grid from a .csv file.
func ReadLabelGridFile(path string) ([][]int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	grid, err := ReadLabelGrid(file)
	if err != nil {
		return nil, errors.WithMessagef(err, "label grid file %q", path)
	}
	return grid, nil
}

// WriteLabelGridFile writes grid to path, replacing any existing file.
func WriteLabelGridFile(path string, grid [][]int) error {
	file, err := os.OpenFile(path, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if err := WriteLabelGrid(file, grid); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
