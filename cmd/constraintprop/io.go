package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/TrevorS/constraintprop"
)

func newCSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true
	return cr
}

// readMatrix parses a numeric CSV file with one sample per row.
func readMatrix(r io.Reader) ([][]float64, error) {
	records, err := newCSVReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}
	data := make([][]float64, len(records))
	for i, rec := range records {
		row := make([]float64, len(rec))
		for j, field := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("data row %d column %d: %w", i+1, j+1, err)
			}
			row[j] = v
		}
		data[i] = row
	}
	return data, nil
}

// readConstraints parses a CSV constraint table of (a, b, kind) rows.
func readConstraints(r io.Reader) ([][3]int, error) {
	cr := newCSVReader(r)
	cr.FieldsPerRecord = 3
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read constraints: %w", err)
	}
	table := make([][3]int, len(records))
	for i, rec := range records {
		for j, field := range rec {
			v, err := strconv.Atoi(strings.TrimSpace(field))
			if err != nil {
				return nil, fmt.Errorf("constraint row %d column %d: %w", i+1, j+1, err)
			}
			table[i][j] = v
		}
	}
	return table, nil
}

type output struct {
	RunID          string `json:"run_id"`
	Samples        []int  `json:"samples"`
	Labels         []int  `json:"labels"`
	Clusters       int    `json:"clusters"`
	Nodes          int    `json:"nodes"`
	Merges         int    `json:"merges"`
	SyntheticEdges int    `json:"synthetic_edges"`
}

func writeResult(w io.Writer, res *constraintprop.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(output{
		RunID:          res.RunID,
		Samples:        res.Samples,
		Labels:         res.Labels,
		Clusters:       res.NumClusters,
		Nodes:          len(res.NodeLabels),
		Merges:         res.Merges,
		SyntheticEdges: res.SyntheticEdges,
	})
}
