package subtitle

import (
	"strings"
	"testing"
	"time"
)

func TestWriteSRT(t *testing.T) {
	segments := []Segment{
		{Start: 0, End: 2500 * time.Millisecond, Text: " So here's the thing. "},
		{Start: 2500 * time.Millisecond, End: time.Hour + 15*time.Second, Text: "It never was."},
	}

	var b strings.Builder
	if err := WriteSRT(&b, segments); err != nil {
		t.Fatalf("WriteSRT: %v", err)
	}

	want := "1\n00:00:00,000 --> 00:00:02,500\nSo here's the thing.\n\n" +
		"2\n00:00:02,500 --> 01:00:15,000\nIt never was.\n\n"
	if b.String() != want {
		t.Errorf("WriteSRT:\n got %q\nwant %q", b.String(), want)
	}
}

func TestSRTRoundTrip(t *testing.T) {
	segments := []Segment{
		{Index: 1, Start: 1200 * time.Millisecond, End: 4800 * time.Millisecond, Text: "First line"},
		{Index: 2, Start: 5 * time.Second, End: 9*time.Second + 40*time.Millisecond, Text: "Second line"},
	}

	var b strings.Builder
	if err := WriteSRT(&b, segments); err != nil {
		t.Fatalf("WriteSRT: %v", err)
	}

	parsed, err := ParseSRT(strings.NewReader(b.String()))
	if err != nil {
		t.Fatalf("ParseSRT: %v", err)
	}
	if len(parsed) != len(segments) {
		t.Fatalf("got %d segments, want %d", len(parsed), len(segments))
	}
	for i := range segments {
		if parsed[i] != segments[i] {
			t.Errorf("segment %d = %+v, want %+v", i, parsed[i], segments[i])
		}
	}
}

func TestParseSRTMultilineText(t *testing.T) {
	input := "1\n00:00:00,000 --> 00:00:03,000\nline one\nline two\n\n"

	parsed, err := ParseSRT(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseSRT: %v", err)
	}
	if len(parsed) != 1 || parsed[0].Text != "line one\nline two" {
		t.Errorf("parsed = %+v", parsed)
	}
}

func TestParseSRTMalformed(t *testing.T) {
	for _, input := range []string{
		"1\nnot a time range\ntext\n\n",
		"x\n00:00:00,000 --> 00:00:01,000\ntext\n\n",
		"1\n00:00:00,000 00:00:01,000\ntext\n\n",
	} {
		if _, err := ParseSRT(strings.NewReader(input)); err == nil {
			t.Errorf("input %q: expected error", input)
		}
	}
}

func TestParseTimestampPeriodSeparator(t *testing.T) {
	got, err := ParseTimestamp("00:01:02.345")
	if err != nil {
		t.Fatalf("ParseTimestamp: %v", err)
	}
	want := time.Minute + 2*time.Second + 345*time.Millisecond
	if got != want {
		t.Errorf("ParseTimestamp = %v, want %v", got, want)
	}
}
