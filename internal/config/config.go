package config

import (
	"context"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type contextKey string

const configKey contextKey = "config"

// Config holds all application configuration
type Config struct {
	// Working directories
	VideosDir    string `yaml:"videos_dir"`
	ClipsDir     string `yaml:"clips_dir"`
	SubtitledDir string `yaml:"subtitled_dir"`
	DesignedDir  string `yaml:"designed_dir"`

	// Overlay template composited on top of every vertical render
	Template string `yaml:"template"`

	// Vertical canvas
	CanvasWidth  int `yaml:"canvas_width"`
	CanvasHeight int `yaml:"canvas_height"`

	// Smart-crop settings
	SmartCrop     bool    `yaml:"smart_crop"`
	CropExpansion float64 `yaml:"crop_expansion"`

	Detector  DetectorConfig   `yaml:"detector"`
	Fetch     FetchConfig      `yaml:"fetch"`
	ClipFind  ClipFinderConfig `yaml:"clip_finder"`
	Whisper   WhisperConfig    `yaml:"whisper"`
	Subtitles SubtitleConfig   `yaml:"subtitles"`
	FFmpeg    FFmpegConfig     `yaml:"ffmpeg"`
	Server    ServerConfig     `yaml:"server"`
}

// DetectorConfig points at the external subject detector. The auth
// token comes from the environment, never from YAML.
type DetectorConfig struct {
	Command string `yaml:"command"`
	Token   string `yaml:"-"`
}

type FetchConfig struct {
	BinaryPath string `yaml:"binary_path"`
	Cookies    string `yaml:"cookies"`
}

type ClipFinderConfig struct {
	Command string `yaml:"command"`
}

type WhisperConfig struct {
	BinaryPath string `yaml:"binary_path"`
	Model      string `yaml:"model"`
}

type SubtitleConfig struct {
	Mode     string `yaml:"mode"` // off, auto, or file
	Dir      string `yaml:"dir"`
	File     string `yaml:"file"`
	FontName string `yaml:"font_name"`
}

type FFmpegConfig struct {
	BinaryPath string `yaml:"binary_path"`
	Threads    int    `yaml:"threads"`
	Preset     string `yaml:"preset"`
	CRF        int    `yaml:"crf"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

const tokenEnv = "PYANNOTE_AUTH_TOKEN"

// Load reads configuration from file or returns defaults. A .env file
// next to the working directory is honored for the detector token.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path == "" {
		path = findConfigFile()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	cfg.Detector.Token = os.Getenv(tokenEnv)
	return cfg, nil
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func defaultConfig() *Config {
	return &Config{
		VideosDir:    "./videos",
		ClipsDir:     "./clips",
		SubtitledDir: "./subtitled",
		DesignedDir:  "./designed",

		Template: "./template.png",

		CanvasWidth:  1080,
		CanvasHeight: 1920,

		SmartCrop:     true,
		CropExpansion: 3.0,

		Detector: DetectorConfig{
			Command: "detect-subjects",
		},
		Fetch: FetchConfig{
			BinaryPath: "yt-dlp",
		},
		ClipFind: ClipFinderConfig{
			Command: "find-clips",
		},
		Whisper: WhisperConfig{
			BinaryPath: "whisper",
			Model:      "small",
		},
		Subtitles: SubtitleConfig{
			Mode:     "auto",
			FontName: "DejaVu Sans",
		},
		FFmpeg: FFmpegConfig{
			BinaryPath: "ffmpeg",
			Threads:    0,
			Preset:     "veryfast",
			CRF:        18,
		},
		Server: ServerConfig{
			Addr: ":8000",
		},
	}
}

func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		"./config.yml",
		filepath.Join(os.Getenv("HOME"), ".clipforge", "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// WithConfig stores config in context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return defaultConfig()
}
