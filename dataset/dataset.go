package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const (
	ColumnApplicantIncome = "ApplicantIncome"
	ColumnLoanAmount      = "LoanAmount"
	ColumnLoanID          = "Loan_ID"
)

// Dataset is a CSV sample of past applications shown on the home page.
type Dataset struct {
	Header []string
	Rows   [][]string
}

// ChartPoint is one bar pair of the income vs loan amount chart.
// Empty or non-numeric cells leave the value at zero and the Has flag unset.
type ChartPoint struct {
	Label              string
	ApplicantIncome    float64
	LoanAmount         float64
	HasApplicantIncome bool
	HasLoanAmount      bool
}

func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

func Read(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("dataset is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return &Dataset{Header: header, Rows: rows}, nil
}

// Head returns the first n rows.
func (d *Dataset) Head(n int) [][]string {
	if n < 0 || n > len(d.Rows) {
		n = len(d.Rows)
	}
	return d.Rows[:n]
}

// IncomeVsLoan extracts applicant income and loan amount for the first n rows.
func (d *Dataset) IncomeVsLoan(n int) ([]ChartPoint, error) {
	incomeIdx := d.column(ColumnApplicantIncome)
	amountIdx := d.column(ColumnLoanAmount)
	if incomeIdx < 0 || amountIdx < 0 {
		return nil, fmt.Errorf("dataset needs %s and %s columns", ColumnApplicantIncome, ColumnLoanAmount)
	}
	labelIdx := d.column(ColumnLoanID)

	rows := d.Head(n)
	points := make([]ChartPoint, 0, len(rows))
	for i, row := range rows {
		p := ChartPoint{Label: strconv.Itoa(i)}
		if labelIdx >= 0 && labelIdx < len(row) && row[labelIdx] != "" {
			p.Label = row[labelIdx]
		}
		p.ApplicantIncome, p.HasApplicantIncome = parseCell(row, incomeIdx)
		p.LoanAmount, p.HasLoanAmount = parseCell(row, amountIdx)
		points = append(points, p)
	}
	return points, nil
}

func (d *Dataset) column(name string) int {
	for i, h := range d.Header {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}

func parseCell(row []string, idx int) (float64, bool) {
	if idx >= len(row) {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(row[idx]), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
