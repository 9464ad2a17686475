package compose

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/emigr8/clipforge/internal/ffmpeg"
	"github.com/emigr8/clipforge/internal/geometry"
)

type fakeRenderer struct {
	calls  []ffmpeg.ComposeOptions
	failOn string // clip basename to fail on
}

func (f *fakeRenderer) Compose(ctx context.Context, opts ffmpeg.ComposeOptions) error {
	f.calls = append(f.calls, opts)
	if f.failOn != "" && filepath.Base(opts.Input) == f.failOn {
		return fmt.Errorf("render failed: Conversion failed!")
	}
	return nil
}

type fakeResolver struct {
	rects map[string]*geometry.Rect
}

func (f *fakeResolver) Resolve(ctx context.Context, clipPath string) *geometry.Rect {
	return f.rects[filepath.Base(clipPath)]
}

type fakeLocator struct {
	tracks map[string]string
}

func (f *fakeLocator) Locate(clipPath string) string {
	return f.tracks[filepath.Base(clipPath)]
}

func setupDirs(t *testing.T, clipNames ...string) (clipsDir, outDir, overlay string) {
	t.Helper()
	clipsDir = t.TempDir()
	outDir = t.TempDir()
	overlay = filepath.Join(t.TempDir(), "template.png")
	if err := os.WriteFile(overlay, []byte("png"), 0644); err != nil {
		t.Fatal(err)
	}
	for _, name := range clipNames {
		if err := os.WriteFile(filepath.Join(clipsDir, name), []byte("mp4"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return clipsDir, outDir, overlay
}

func newComposer(renderer Renderer, resolver CropResolver, locator SubtitleLocator, opts Options) *Composer {
	return New(zerolog.Nop(), renderer, resolver, locator, opts)
}

func TestRunContinuesPastFailedClip(t *testing.T) {
	clipsDir, outDir, overlay := setupDirs(t, "clip_1.mp4", "clip_2.mp4", "clip_3.mp4")

	renderer := &fakeRenderer{failOn: "clip_2.mp4"}
	composer := newComposer(renderer, nil, nil, Options{
		ClipsDir:     clipsDir,
		OutDir:       outDir,
		OverlayImage: overlay,
		CanvasWidth:  1080,
		CanvasHeight: 1920,
	})

	report, err := composer.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(report.Results) != 3 {
		t.Fatalf("results = %d, want 3", len(report.Results))
	}
	if report.Succeeded() != 2 || report.Failed() != 1 {
		t.Errorf("succeeded/failed = %d/%d", report.Succeeded(), report.Failed())
	}
	if report.Results[1].Err == nil {
		t.Error("clip_2 result should carry its error")
	}
	if report.Results[0].Err != nil || report.Results[2].Err != nil {
		t.Error("clips 1 and 3 should succeed")
	}
	// All three clips must have been attempted, in order.
	if len(renderer.calls) != 3 {
		t.Fatalf("render calls = %d", len(renderer.calls))
	}
	if filepath.Base(renderer.calls[2].Input) != "clip_3.mp4" {
		t.Errorf("third render input = %s", renderer.calls[2].Input)
	}
}

func TestRunWiresRenderOptions(t *testing.T) {
	clipsDir, outDir, overlay := setupDirs(t, "clip_1.mp4")

	renderer := &fakeRenderer{}
	resolver := &fakeResolver{rects: map[string]*geometry.Rect{
		"clip_1.mp4": {X: 320, Y: 40, W: 608, H: 1080},
	}}
	locator := &fakeLocator{tracks: map[string]string{
		"clip_1.mp4": "/subs/clip_1.srt",
	}}

	composer := newComposer(renderer, resolver, locator, Options{
		ClipsDir:     clipsDir,
		OutDir:       outDir,
		OverlayImage: overlay,
		CanvasWidth:  1080,
		CanvasHeight: 1920,
		Preset:       "slow",
		CRF:          20,
	})

	report, err := composer.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	call := renderer.calls[0]
	if call.OverlayImage != overlay {
		t.Errorf("overlay = %s", call.OverlayImage)
	}
	if call.FinalLabel != "outv" {
		t.Errorf("final label = %s", call.FinalLabel)
	}
	if call.Preset != "slow" || call.CRF != 20 {
		t.Errorf("encode settings = %s/%d", call.Preset, call.CRF)
	}
	if !strings.Contains(call.FilterGraph, "crop=608:1080:320:40") {
		t.Errorf("graph missing detected crop: %s", call.FilterGraph)
	}
	if !strings.Contains(call.FilterGraph, "subtitles=") {
		t.Errorf("graph missing caption stage: %s", call.FilterGraph)
	}
	if want := filepath.Join(outDir, "clip_1_vertical.mp4"); call.Output != want {
		t.Errorf("output = %s, want %s", call.Output, want)
	}

	res := report.Results[0]
	if !res.Detected || !res.Subtitled {
		t.Errorf("result flags = %+v", res)
	}
}

func TestRunCenteredFallbackWithoutResolver(t *testing.T) {
	clipsDir, outDir, overlay := setupDirs(t, "clip_1.mp4")

	renderer := &fakeRenderer{}
	composer := newComposer(renderer, nil, nil, Options{
		ClipsDir:     clipsDir,
		OutDir:       outDir,
		OverlayImage: overlay,
		CanvasWidth:  1080,
		CanvasHeight: 1920,
	})

	report, err := composer.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Results[0].Detected {
		t.Error("no resolver must mean centered fallback")
	}
	if !strings.Contains(renderer.calls[0].FilterGraph, "iw*min(1.0\\,ih/iw*9/16)") {
		t.Errorf("graph missing centered crop: %s", renderer.calls[0].FilterGraph)
	}
	if strings.Contains(renderer.calls[0].FilterGraph, "subtitles=") {
		t.Error("no locator must mean no caption stage")
	}
}

func TestRunEmptyClipsDir(t *testing.T) {
	clipsDir, outDir, overlay := setupDirs(t)

	composer := newComposer(&fakeRenderer{}, nil, nil, Options{
		ClipsDir:     clipsDir,
		OutDir:       outDir,
		OverlayImage: overlay,
		CanvasWidth:  1080,
		CanvasHeight: 1920,
	})

	report, err := composer.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Results) != 0 {
		t.Errorf("results = %v", report.Results)
	}
}

func TestRunPreflight(t *testing.T) {
	clipsDir, outDir, overlay := setupDirs(t, "clip_1.mp4")

	cases := []struct {
		name string
		opts Options
	}{
		{"missing overlay", Options{ClipsDir: clipsDir, OutDir: outDir, OverlayImage: filepath.Join(outDir, "nope.png"), CanvasWidth: 1080, CanvasHeight: 1920}},
		{"zero canvas", Options{ClipsDir: clipsDir, OutDir: outDir, OverlayImage: overlay, CanvasWidth: 0, CanvasHeight: 1920}},
		{"negative canvas", Options{ClipsDir: clipsDir, OutDir: outDir, OverlayImage: overlay, CanvasWidth: 1080, CanvasHeight: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			composer := newComposer(&fakeRenderer{}, nil, nil, tc.opts)
			if _, err := composer.Run(context.Background()); err == nil {
				t.Error("expected preflight error")
			}
		})
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	clipsDir, outDir, overlay := setupDirs(t, "clip_1.mp4", "clip_2.mp4")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	composer := newComposer(&fakeRenderer{}, nil, nil, Options{
		ClipsDir:     clipsDir,
		OutDir:       outDir,
		OverlayImage: overlay,
		CanvasWidth:  1080,
		CanvasHeight: 1920,
	})

	report, err := composer.Run(ctx)
	if err == nil {
		t.Fatal("expected context error")
	}
	if len(report.Results) != 0 {
		t.Errorf("results after immediate cancel = %v", report.Results)
	}
}

func TestOutputName(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"clip_1.mp4", "clip_1_vertical.mp4"},
		{"/clips/clip_2.mp4", "clip_2_vertical.mp4"},
		{"clip_3_subtitled.mp4", "clip_3_vertical.mp4"},
		{"/subtitled/clip_10_subtitled.mp4", "clip_10_vertical.mp4"},
	}
	for _, tc := range cases {
		if got := OutputName(tc.in); got != tc.want {
			t.Errorf("OutputName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestReportRender(t *testing.T) {
	report := newReport()
	report.add(Result{Clip: "clip_1.mp4", Detected: true, Subtitled: true})
	report.add(Result{Clip: "clip_2.mp4", Err: fmt.Errorf("boom")})

	var sb strings.Builder
	report.Render(&sb)

	out := sb.String()
	for _, want := range []string{"clip_1.mp4", "clip_2.mp4", "detected", "centered", "1 ok / 1 failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}
