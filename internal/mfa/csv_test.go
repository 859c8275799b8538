package mfa

import (
	"bytes"
	"strings"
	"testing"
)

func TestWriteWordsCSV(t *testing.T) {
	doc, err := ParseJSON(strings.NewReader(sampleJSON))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteWordsCSV(&buf, doc, false); err != nil {
		t.Fatalf("WriteWordsCSV: %v", err)
	}
	want := "word,start,end\nhello,0,0.4\n<eps>,0.4,0.5\n<unk>,0.5,0.9\nWorld,0.9,1.2\n"
	if buf.String() != want {
		t.Fatalf("csv mismatch\n got: %q\nwant: %q", buf.String(), want)
	}
}

func TestWriteWordsCSVWithPhones(t *testing.T) {
	doc := Document{
		Words: []Entry{
			{Start: 0, End: 0.4, Label: "hello"},
			{Start: 0.9, End: 1.2, Label: "world, again"},
		},
		Phones: []Entry{
			{Start: 0.2, End: 0.4, Label: "l"},
			{Start: 0.0, End: 0.2, Label: "h"},
			{Start: 0.3, End: 0.95, Label: "x"},
			{Start: 0.9, End: 1.2, Label: "w"},
		},
	}
	var buf bytes.Buffer
	if err := WriteWordsCSV(&buf, doc, true); err != nil {
		t.Fatalf("WriteWordsCSV: %v", err)
	}
	want := strings.Join([]string{
		"word,phone,start,end",
		"hello,,0,0.4",
		",h,0,0.2",
		",l,0.2,0.4",
		`"world, again",,0.9,1.2`,
		",w,0.9,1.2",
		"",
	}, "\n")
	if buf.String() != want {
		t.Fatalf("csv mismatch\n got: %q\nwant: %q", buf.String(), want)
	}
}
