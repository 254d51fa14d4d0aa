// Package csvio reads delimited taxonomy exports into generic records.
//
// Every value is kept as raw text. Code-bearing columns (CODE, PARENTID,
// CHILDID, ...) must never be type-inferred or numeric-looking codes would
// lose their leading zeros; columns that genuinely carry numbers or booleans
// are converted lazily through the typed accessors on Record.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Column names as they appear in the export header rows.
const (
	ColID                   = "ID"
	ColCode                 = "CODE"
	ColPreferredLabel       = "PREFERREDLABEL"
	ColAltLabels            = "ALTLABELS"
	ColDescription          = "DESCRIPTION"
	ColOccupationGroupCode  = "OCCUPATIONGROUPCODE"
	ColOccupationType       = "OCCUPATIONTYPE"
	ColGroupType            = "GROUPTYPE"
	ColSkillType            = "SKILLTYPE"
	ColReuseLevel           = "REUSELEVEL"
	ColOriginURI            = "ORIGINURI"
	ColParentID             = "PARENTID"
	ColChildID              = "CHILDID"
	ColOccupationID         = "OCCUPATIONID"
	ColSkillID              = "SKILLID"
	ColRelationType         = "RELATIONTYPE"
	ColSignallingValue      = "SIGNALLINGVALUE"
	ColSignallingValueLabel = "SIGNALLINGVALUELABEL"
	ColIsLocalized          = "ISLOCALIZED"
)

// TextColumns lists the columns that are always opaque text, even when every
// value happens to look numeric.
var TextColumns = map[string]struct{}{
	ColCode:                {},
	ColOccupationGroupCode: {},
	ColParentID:            {},
	ColChildID:             {},
	ColOccupationID:        {},
	ColSkillID:             {},
}

// Record is one data row keyed by upper-cased header name.
type Record map[string]string

// Text returns the trimmed raw value of a column, or "" when absent.
func (r Record) Text(col string) string {
	return strings.TrimSpace(r[col])
}

// Bool interprets a column as a boolean. Unparseable or absent values are
// false.
func (r Record) Bool(col string) bool {
	v, err := strconv.ParseBool(strings.ToLower(r.Text(col)))
	if err != nil {
		return false
	}
	return v
}

// Float interprets a column as a number. Unparseable or absent values are 0.
func (r Record) Float(col string) float64 {
	v, err := strconv.ParseFloat(r.Text(col), 64)
	if err != nil {
		return 0
	}
	return v
}

// ReadAll parses a delimited stream with a header row into records.
//
// Header names are upper-cased and trimmed before use so exports with
// inconsistent header casing still map onto the expected column constants.
// Rows with a mismatched field count are kept (short rows simply miss the
// trailing columns); rows the csv parser cannot recover are skipped.
func ReadAll(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = strings.ToUpper(strings.TrimSpace(h))
	}

	var records []Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // skip unrecoverable rows
		}
		rec := make(Record, len(cols))
		for i, val := range row {
			if i >= len(cols) || cols[i] == "" {
				continue
			}
			rec[cols[i]] = val
		}
		records = append(records, rec)
	}
	return records, nil
}

// ReadString is a convenience wrapper over ReadAll for in-memory payloads,
// the form batches arrive in across the worker boundary.
func ReadString(data string) ([]Record, error) {
	return ReadAll(strings.NewReader(data))
}
