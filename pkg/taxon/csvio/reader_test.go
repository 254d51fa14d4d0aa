package csvio

import (
	"strings"
	"testing"
)

func TestReadAll_HeaderMapping(t *testing.T) {
	data := "CODE,PREFERREDLABEL,ISLOCALIZED\n0110,Officer,true\n2654,Director,false\n"
	recs, err := ReadAll(strings.NewReader(data))
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].Text(ColCode) != "0110" {
		t.Errorf("leading zero lost: %q", recs[0].Text(ColCode))
	}
	if recs[0].Text(ColPreferredLabel) != "Officer" {
		t.Errorf("unexpected label %q", recs[0].Text(ColPreferredLabel))
	}
	if !recs[0].Bool(ColIsLocalized) || recs[1].Bool(ColIsLocalized) {
		t.Error("boolean accessor mismatch")
	}
}

func TestReadAll_HeaderCaseNormalized(t *testing.T) {
	data := "code, PreferredLabel \nX1,Label\n"
	recs, err := ReadAll(strings.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if recs[0].Text(ColCode) != "X1" || recs[0].Text(ColPreferredLabel) != "Label" {
		t.Errorf("header normalization failed: %v", recs[0])
	}
}

func TestReadAll_ShortRowsKeepLeadingColumns(t *testing.T) {
	data := "PARENTID,CHILDID,EXTRA\nG1,S1\n"
	recs, err := ReadAll(strings.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	if recs[0].Text(ColParentID) != "G1" || recs[0].Text(ColChildID) != "S1" {
		t.Errorf("short row mis-mapped: %v", recs[0])
	}
	if recs[0].Text("EXTRA") != "" {
		t.Errorf("absent column should read empty, got %q", recs[0].Text("EXTRA"))
	}
}

func TestReadAll_EmptyInputFailsOnHeader(t *testing.T) {
	if _, err := ReadAll(strings.NewReader("")); err == nil {
		t.Fatal("expected header error on empty input")
	}
}

func TestRecordAccessors(t *testing.T) {
	rec := Record{
		ColSignallingValue: " 0.75 ",
		ColIsLocalized:     "TRUE",
		ColCode:            " 007 ",
	}
	if got := rec.Float(ColSignallingValue); got != 0.75 {
		t.Errorf("Float = %v", got)
	}
	if !rec.Bool(ColIsLocalized) {
		t.Error("Bool should accept TRUE")
	}
	if got := rec.Text(ColCode); got != "007" {
		t.Errorf("Text should trim only, got %q", got)
	}
}
