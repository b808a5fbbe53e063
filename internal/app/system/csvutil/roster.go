// internal/app/system/csvutil/roster.go
package csvutil

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dalemusser/coachhub/internal/app/system/inputval"
	"github.com/dalemusser/coachhub/internal/app/system/normalize"
)

// ErrTooManyRows is returned when a roster exceeds ParseOptions.MaxRows.
var ErrTooManyRows = errors.New("csvutil: too many rows")

// RosterRow is one validated student from a roster file.
type RosterRow struct {
	Line       int    `json:"line"`
	FullName   string `json:"fullName" validate:"required,max=120" label:"Ad Soyad"`
	Email      string `json:"email" validate:"required,email" label:"E-posta"`
	GradeLevel string `json:"gradeLevel,omitempty" validate:"max=40" label:"Sınıf düzeyi"`
	School     string `json:"school,omitempty" validate:"max=120" label:"Okul"`
}

// RowError describes why a line was rejected. Line 0 means the file itself.
type RowError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// ParseOptions bounds a parse. MaxRows <= 0 means unlimited.
type ParseOptions struct {
	MaxRows int
}

// DefaultParseOptions returns the limits used by the import endpoint.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{MaxRows: MaxRows}
}

// RosterResult holds the rows that passed validation and the ones that did not.
type RosterResult struct {
	Rows   []RosterRow
	Errors []RowError
}

// HasErrors reports whether any line was rejected.
func (r *RosterResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// ParseRoster reads a student roster:
//
//	ad_soyad,e_posta[,sinif_duzeyi[,okul]]
//
// A header row is optional, a UTF-8 BOM is ignored and so are blank lines.
// Emails are lowercased and duplicate emails within the file are rejected.
// Semicolon-separated files (the spreadsheet default in tr-TR) are accepted.
func ParseRoster(r io.Reader, opts ParseOptions) (RosterResult, error) {
	var result RosterResult

	data, err := io.ReadAll(r)
	if err != nil {
		return result, err
	}
	text := strings.TrimPrefix(string(data), "\ufeff")
	if strings.TrimSpace(text) == "" {
		return result, nil
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comma = sniffComma(text)

	seen := make(map[string]int)
	count := 0
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			line := 0
			if errors.As(err, &pe) {
				line = pe.StartLine
			}
			result.Errors = append(result.Errors, RowError{Line: line, Reason: err.Error()})
			continue
		}
		line, _ := reader.FieldPos(0)
		if blank(rec) {
			continue
		}
		if count == 0 && len(result.Errors) == 0 && isHeaderRow(rec) {
			continue
		}
		count++
		if opts.MaxRows > 0 && count > opts.MaxRows {
			return result, ErrTooManyRows
		}

		row := parseRow(rec, line)
		if res := inputval.Validate(row); res.HasErrors() {
			result.Errors = append(result.Errors, RowError{Line: line, Reason: res.First()})
			continue
		}
		if first, dup := seen[row.Email]; dup {
			result.Errors = append(result.Errors, RowError{
				Line:   line,
				Reason: fmt.Sprintf("E-posta %d. satırda zaten var.", first),
			})
			continue
		}
		seen[row.Email] = line
		result.Rows = append(result.Rows, row)
	}
	return result, nil
}

func parseRow(rec []string, line int) RosterRow {
	field := func(i int) string {
		if i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}
	return RosterRow{
		Line:       line,
		FullName:   normalize.Name(field(0)),
		Email:      normalize.Email(field(1)),
		GradeLevel: normalize.Name(field(2)),
		School:     normalize.Name(field(3)),
	}
}

// isHeaderRow reports whether rec names columns rather than carrying a student.
func isHeaderRow(rec []string) bool {
	if len(rec) < 2 {
		return false
	}
	c0 := strings.ToLower(strings.TrimSpace(rec[0]))
	c1 := strings.ToLower(strings.TrimSpace(rec[1]))
	if strings.Contains(c1, "@") {
		return false
	}
	for _, hw := range []string{"ad_soyad", "ad soyad", "adsoyad", "full_name", "full name", "name", "isim"} {
		if c0 == hw {
			return true
		}
	}
	for _, hw := range []string{"e_posta", "e-posta", "eposta", "email", "e-mail"} {
		if c1 == hw {
			return true
		}
	}
	return false
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// sniffComma picks ';' when the first line has more semicolons than commas.
func sniffComma(text string) rune {
	first, _, _ := strings.Cut(text, "\n")
	if strings.Count(first, ";") > strings.Count(first, ",") {
		return ';'
	}
	return ','
}
