package contact

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"agency-backend/internal/models"
	"agency-backend/internal/validate"

	"github.com/xuri/excelize/v2"
)

// Columns is the CSV layout used for both import and export.
var Columns = []string{"first_name", "last_name", "email", "phone", "address", "suburb", "notes"}

var ErrMissingColumn = errors.New("first_name column is required")

// RowError reports one rejected line. Line numbers count the header as 1.
type RowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// ParseCSV reads contacts in any column order. Unknown columns are ignored
// and bad rows are collected instead of aborting the import.
func ParseCSV(r io.Reader) ([]models.Contact, []RowError, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil, ErrMissingColumn
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	index, err := headerIndex(header)
	if err != nil {
		return nil, nil, err
	}

	var t table
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			t.rowErrs = append(t.rowErrs, RowError{Line: line, Message: err.Error()})
			continue
		}
		t.add(index, rec, line)
	}
	return t.contacts, t.rowErrs, nil
}

// ParseXLSX reads the first sheet of a workbook with the same layout rules
// as ParseCSV.
func ParseXLSX(r io.Reader) ([]models.Contact, []RowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, ErrMissingColumn
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, ErrMissingColumn
	}
	index, err := headerIndex(rows[0])
	if err != nil {
		return nil, nil, err
	}

	var t table
	for i, rec := range rows[1:] {
		t.add(index, rec, i+2)
	}
	return t.contacts, t.rowErrs, nil
}

func headerIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		index[h] = i
	}
	if _, ok := index["first_name"]; !ok {
		return nil, ErrMissingColumn
	}
	return index, nil
}

type table struct {
	contacts []models.Contact
	rowErrs  []RowError
}

func (t *table) add(index map[string]int, rec []string, line int) {
	if isBlank(rec) {
		return
	}
	get := func(col string) string {
		i, ok := index[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	ct := models.Contact{
		FirstName: get("first_name"),
		LastName:  get("last_name"),
		Email:     strings.ToLower(get("email")),
		Phone:     get("phone"),
		Address:   get("address"),
		Suburb:    get("suburb"),
		Notes:     get("notes"),
	}
	if msg := checkRow(ct); msg != "" {
		t.rowErrs = append(t.rowErrs, RowError{Line: line, Message: msg})
		return
	}
	t.contacts = append(t.contacts, ct)
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func checkRow(ct models.Contact) string {
	switch {
	case ct.FirstName == "":
		return "first_name is empty"
	case len(ct.FirstName) > 100 || len(ct.LastName) > 100:
		return "name is too long"
	case ct.Email != "" && !validEmail(ct.Email):
		return fmt.Sprintf("invalid email %q", ct.Email)
	case ct.Email == "" && ct.Phone == "":
		return "email or phone is required"
	}
	return ""
}

func validEmail(s string) bool {
	return validate.Var(s, "email") == nil
}

// WriteCSV writes contacts with the Columns header.
func WriteCSV(w io.Writer, contacts []models.Contact) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, ct := range contacts {
		if err := cw.Write([]string{
			ct.FirstName, ct.LastName, ct.Email, ct.Phone, ct.Address, ct.Suburb, ct.Notes,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
