package fetch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestDownload(t *testing.T) {
	destDir := t.TempDir()

	f := New(zerolog.Nop(), "yt-dlp", "")
	f.WithRunner(func(ctx context.Context, name string, args ...string) error {
		// Simulate yt-dlp honoring the output template.
		return os.WriteFile(filepath.Join(destDir, "input.webm"), []byte("video"), 0644)
	})

	got, err := f.Download(context.Background(), "https://example.com/watch?v=abc", destDir)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if want := filepath.Join(destDir, "input.webm"); got != want {
		t.Errorf("Download = %q, want %q", got, want)
	}
}

func TestDownloadCookiesInjected(t *testing.T) {
	destDir := t.TempDir()
	cookies := filepath.Join(t.TempDir(), "cookies.txt")
	if err := os.WriteFile(cookies, []byte("# cookies"), 0644); err != nil {
		t.Fatal(err)
	}

	var gotArgs []string
	f := New(zerolog.Nop(), "yt-dlp", cookies)
	f.WithRunner(func(ctx context.Context, name string, args ...string) error {
		gotArgs = args
		return os.WriteFile(filepath.Join(destDir, "input.mp4"), []byte("video"), 0644)
	})

	if _, err := f.Download(context.Background(), "https://example.com/v", destDir); err != nil {
		t.Fatalf("Download: %v", err)
	}

	found := false
	for i, arg := range gotArgs {
		if arg == "--cookies" && i+1 < len(gotArgs) && gotArgs[i+1] == cookies {
			found = true
		}
	}
	if !found {
		t.Errorf("cookies flag missing from args %v", gotArgs)
	}
	if gotArgs[len(gotArgs)-1] != "https://example.com/v" {
		t.Errorf("URL must come last: %v", gotArgs)
	}
}

func TestDownloadNothingWritten(t *testing.T) {
	f := New(zerolog.Nop(), "yt-dlp", "")
	f.WithRunner(func(ctx context.Context, name string, args ...string) error {
		return nil // tool succeeded but produced no file
	})

	if _, err := f.Download(context.Background(), "https://example.com/v", t.TempDir()); err == nil {
		t.Fatal("expected error when no file was downloaded")
	}
}

func TestDownloadEmptyURL(t *testing.T) {
	f := New(zerolog.Nop(), "", "")
	if _, err := f.Download(context.Background(), "", t.TempDir()); err == nil {
		t.Fatal("expected error for empty URL")
	}
}
