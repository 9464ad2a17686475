package ffmpeg

import (
	"strings"
	"testing"
)

func TestComposeArgs(t *testing.T) {
	opts := ComposeOptions{
		Input:        "/clips/clip_1.mp4",
		OverlayImage: "/templates/vertical.png",
		Output:       "/designed/clip_1_vertical.mp4",
		FilterGraph:  "[0:v]crop=1:1:0:0[outv]",
	}

	got := strings.Join(composeArgs(opts), " ")
	want := "-i /clips/clip_1.mp4 -i /templates/vertical.png " +
		"-filter_complex [0:v]crop=1:1:0:0[outv] " +
		"-map [outv] -map 0:a? " +
		"-c:v libx264 -preset veryfast -crf 18 -c:a copy " +
		"/designed/clip_1_vertical.mp4"
	if got != want {
		t.Errorf("composeArgs:\n got %q\nwant %q", got, want)
	}
}

func TestComposeArgsOverrides(t *testing.T) {
	opts := ComposeOptions{
		Input:        "in.mp4",
		OverlayImage: "ov.png",
		Output:       "out.mp4",
		FilterGraph:  "g",
		FinalLabel:   "final",
		VideoCodec:   "libx265",
		Preset:       "slow",
		CRF:          21,
	}

	args := strings.Join(composeArgs(opts), " ")
	for _, want := range []string{"-map [final]", "-c:v libx265", "-preset slow", "-crf 21"} {
		if !strings.Contains(args, want) {
			t.Errorf("args %q missing %q", args, want)
		}
	}
}

func TestComposeArgsAudioOptional(t *testing.T) {
	args := composeArgs(ComposeOptions{
		Input: "a", OverlayImage: "b", Output: "c", FilterGraph: "g",
	})

	for i, arg := range args {
		if arg == "0:a?" {
			if i == 0 || args[i-1] != "-map" {
				t.Fatal("0:a? must be a -map value")
			}
			return
		}
	}
	t.Fatal("optional audio map 0:a? not present")
}

func TestValidateComposeOptions(t *testing.T) {
	valid := ComposeOptions{Input: "a", OverlayImage: "b", Output: "c", FilterGraph: "g"}
	if err := validateComposeOptions(valid); err != nil {
		t.Fatalf("valid options rejected: %v", err)
	}

	cases := []struct {
		name string
		mod  func(*ComposeOptions)
	}{
		{"missing input", func(o *ComposeOptions) { o.Input = "" }},
		{"missing overlay", func(o *ComposeOptions) { o.OverlayImage = "" }},
		{"missing output", func(o *ComposeOptions) { o.Output = "" }},
		{"missing graph", func(o *ComposeOptions) { o.FilterGraph = "" }},
		{"crf out of range", func(o *ComposeOptions) { o.CRF = 52 }},
	}

	for _, tc := range cases {
		opts := valid
		tc.mod(&opts)
		if err := validateComposeOptions(opts); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestTailBuffer(t *testing.T) {
	tail := newTailBuffer(3)
	for _, line := range []string{"one", "", "two", "three", "four"} {
		tail.Add(line)
	}

	if got, want := tail.String(), "two | three | four"; got != want {
		t.Errorf("tail = %q, want %q", got, want)
	}
}
