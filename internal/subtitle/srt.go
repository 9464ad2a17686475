package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Segment is one timed caption.
type Segment struct {
	Index int
	Start time.Duration
	End   time.Duration
	Text  string
}

// WriteSRT writes segments as sequential SRT blocks: index, time range,
// text, blank line. Indexes are renumbered from 1 in order.
func WriteSRT(w io.Writer, segments []Segment) error {
	for i, seg := range segments {
		_, err := fmt.Fprintf(w, "%d\n%s --> %s\n%s\n\n",
			i+1,
			FormatTimestamp(seg.Start),
			FormatTimestamp(seg.End),
			strings.TrimSpace(seg.Text))
		if err != nil {
			return fmt.Errorf("write srt block %d: %w", i+1, err)
		}
	}
	return nil
}

// ParseSRT reads sequential SRT blocks. Multi-line caption text is
// joined with newlines; malformed blocks are an error.
func ParseSRT(r io.Reader) ([]Segment, error) {
	scanner := bufio.NewScanner(r)

	var segments []Segment
	var block []string

	flush := func() error {
		if len(block) == 0 {
			return nil
		}
		if len(block) < 2 {
			return fmt.Errorf("srt block %d: too short", len(segments)+1)
		}

		index, err := strconv.Atoi(strings.TrimSpace(block[0]))
		if err != nil {
			return fmt.Errorf("srt block %d: bad index %q", len(segments)+1, block[0])
		}

		times := strings.Split(block[1], "-->")
		if len(times) != 2 {
			return fmt.Errorf("srt block %d: bad time range %q", index, block[1])
		}
		start, err := ParseTimestamp(strings.TrimSpace(times[0]))
		if err != nil {
			return fmt.Errorf("srt block %d: %w", index, err)
		}
		end, err := ParseTimestamp(strings.TrimSpace(times[1]))
		if err != nil {
			return fmt.Errorf("srt block %d: %w", index, err)
		}

		segments = append(segments, Segment{
			Index: index,
			Start: start,
			End:   end,
			Text:  strings.Join(block[2:], "\n"),
		})
		block = nil
		return nil
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		block = append(block, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read srt: %w", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return segments, nil
}

// FormatTimestamp renders a duration as the SRT HH:MM:SS,mmm form.
func FormatTimestamp(d time.Duration) string {
	ms := d.Milliseconds()
	hours := ms / 3600000
	minutes := (ms % 3600000) / 60000
	seconds := (ms % 60000) / 1000
	millis := ms % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}

// ParseTimestamp parses the SRT HH:MM:SS,mmm form. A period separator
// is tolerated for tracks written by looser tools.
func ParseTimestamp(s string) (time.Duration, error) {
	s = strings.ReplaceAll(s, ".", ",")
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid srt timestamp %q", s)
	}
	hms := strings.Split(parts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid srt timestamp %q", s)
	}

	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(parts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid srt timestamp %q", s)
	}

	total := time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(millis)*time.Millisecond
	return total, nil
}
