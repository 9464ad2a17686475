package subtitle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeTranscriber struct {
	segments map[string][]Segment
	err      error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, mediaPath string) ([]Segment, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.segments[filepath.Base(mediaPath)], nil
}

type fakeBurner struct {
	burned [][3]string
	err    error
}

func (f *fakeBurner) Burn(ctx context.Context, input, subtitlePath, output string) error {
	if f.err != nil {
		return f.err
	}
	f.burned = append(f.burned, [3]string{input, subtitlePath, output})
	return os.WriteFile(output, []byte("video"), 0644)
}

func writeClip(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("mp4"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestStageRun(t *testing.T) {
	clipsDir := t.TempDir()
	outDir := t.TempDir()
	writeClip(t, clipsDir, "clip_2.mp4")
	writeClip(t, clipsDir, "clip_1.mp4")

	tr := &fakeTranscriber{segments: map[string][]Segment{
		"clip_1.mp4": {{Start: 0, End: time.Second, Text: "one"}},
		"clip_2.mp4": {{Start: 0, End: 2 * time.Second, Text: "two"}},
	}}
	burner := &fakeBurner{}

	stage := NewStage(zerolog.Nop(), tr, burner)
	outputs, err := stage.Run(context.Background(), clipsDir, outDir)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(outputs) != 2 {
		t.Fatalf("got %d outputs: %v", len(outputs), outputs)
	}
	// Sorted processing order.
	if filepath.Base(outputs[0]) != "clip_1_subtitled.mp4" || filepath.Base(outputs[1]) != "clip_2_subtitled.mp4" {
		t.Errorf("outputs = %v", outputs)
	}

	for _, stem := range []string{"clip_1", "clip_2"} {
		srt := filepath.Join(outDir, stem+".srt")
		data, err := os.ReadFile(srt)
		if err != nil {
			t.Fatalf("missing srt for %s: %v", stem, err)
		}
		if _, err := ParseSRT(bytes.NewReader(data)); err != nil {
			t.Errorf("%s.srt does not parse back: %v", stem, err)
		}
	}

	if len(burner.burned) != 2 {
		t.Fatalf("burned %d clips", len(burner.burned))
	}
	if got := filepath.Base(burner.burned[0][1]); got != "clip_1.srt" {
		t.Errorf("first burn used track %q", got)
	}
}

func TestStageRunEmptyDir(t *testing.T) {
	stage := NewStage(zerolog.Nop(), &fakeTranscriber{}, &fakeBurner{})
	outputs, err := stage.Run(context.Background(), t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(outputs) != 0 {
		t.Errorf("outputs = %v, want none", outputs)
	}
}

func TestStageRunTranscribeFailure(t *testing.T) {
	clipsDir := t.TempDir()
	writeClip(t, clipsDir, "clip_1.mp4")

	stage := NewStage(zerolog.Nop(), &fakeTranscriber{err: fmt.Errorf("model load failed")}, &fakeBurner{})
	if _, err := stage.Run(context.Background(), clipsDir, t.TempDir()); err == nil {
		t.Fatal("expected error")
	}
}

func TestWhisperCommandReadsSegments(t *testing.T) {
	media := writeClip(t, t.TempDir(), "clip_1.mp4")

	w := NewWhisperCommand(zerolog.Nop(), "whisper", "small")
	w.WithRunner(func(ctx context.Context, name string, args ...string) error {
		// args: <media> --model small --output_format json --output_dir <dir>
		outDir := args[len(args)-1]
		payload := map[string]any{
			"segments": []map[string]any{
				{"start": 0.0, "end": 1.5, "text": "  hello  "},
				{"start": 1.5, "end": 3.0, "text": "world"},
			},
		}
		data, _ := json.Marshal(payload)
		return os.WriteFile(filepath.Join(outDir, "clip_1.json"), data, 0644)
	})

	segments, err := w.Transcribe(context.Background(), media)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("got %d segments", len(segments))
	}
	if segments[0].Text != "hello" {
		t.Errorf("text not trimmed: %q", segments[0].Text)
	}
	if segments[1].Start != 1500*time.Millisecond {
		t.Errorf("start = %v", segments[1].Start)
	}
}
