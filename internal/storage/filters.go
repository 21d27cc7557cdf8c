package storage

import (
	"fmt"
	"time"
)

// Filters restricts the ranking candidate set before similarity ordering.
// Zero-valued fields are not applied. Scalar fields match exactly;
// Professor matches membership in the chunk's professor array; Tags
// requires every listed tag to be present; ValidOn restricts to chunks
// whose validity window contains the date.
type Filters struct {
	Campus     string
	Building   string
	Department string
	Lab        string
	Professor  string
	Tags       []string
	ValidOn    *time.Time
}

func (f *Filters) IsZero() bool {
	if f == nil {
		return true
	}

	return f.Campus == "" && f.Building == "" && f.Department == "" &&
		f.Lab == "" && f.Professor == "" && len(f.Tags) == 0 && f.ValidOn == nil
}

// appends WHERE fragments for the set filters, numbering placeholders after
// the already-collected args
func (f *Filters) clauses(args []any) ([]string, []any) {
	var clauses []string

	if f == nil {
		return clauses, args
	}

	add := func(format string, val any) {
		args = append(args, val)
		clauses = append(clauses, fmt.Sprintf(format, len(args)))
	}

	if f.Campus != "" {
		add("c.campus = $%d", f.Campus)
	}

	if f.Building != "" {
		add("c.building = $%d", f.Building)
	}

	if f.Department != "" {
		add("c.department = $%d", f.Department)
	}

	if f.Lab != "" {
		add("c.lab = $%d", f.Lab)
	}

	if f.Professor != "" {
		add("c.professor @> ARRAY[$%d::text]", f.Professor)
	}

	if len(f.Tags) > 0 {
		add("c.tags @> $%d", f.Tags)
	}

	if f.ValidOn != nil {
		add("(c.validity_start IS NULL OR c.validity_start <= $%d)", *f.ValidOn)
		add("(c.validity_end IS NULL OR c.validity_end >= $%d)", *f.ValidOn)
	}

	return clauses, args
}
