package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/emigr8/clipforge/internal/config"
	"github.com/emigr8/clipforge/internal/logging"
	"github.com/emigr8/clipforge/internal/pipeline"
	"github.com/emigr8/clipforge/internal/server"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	ctx := context.Background()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "clipforge",
	Short: "clipforge - vertical short-form video pipeline",
	Long:  "Downloads long-form videos, cuts highlight clips, burns subtitles, and composes them onto a branded 9:16 canvas.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(verbose)

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		ctx := config.WithConfig(cmd.Context(), cfg)
		cmd.SetContext(ctx)

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(clipsCmd)
	rootCmd.AddCommand(subtitlesCmd)
	rootCmd.AddCommand(composeCmd)
	rootCmd.AddCommand(pipelineCmd)
	rootCmd.AddCommand(serveCmd)
}

func newPipeline(cmd *cobra.Command) (*pipeline.Pipeline, *config.Config, error) {
	cfg := config.FromContext(cmd.Context())
	p, err := pipeline.New(log.Logger, cfg)
	if err != nil {
		return nil, nil, err
	}
	return p, cfg, nil
}

var fetchCmd = &cobra.Command{
	Use:   "fetch [url]",
	Short: "Download a source video",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, _, err := newPipeline(cmd)
		if err != nil {
			return err
		}

		path, err := p.FetchVideo(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		log.Info().Str("path", path).Msg("fetch complete")
		return nil
	},
}

var clipsCmd = &cobra.Command{
	Use:   "clips [source video]",
	Short: "Find and cut highlight clips from a source video",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, _, err := newPipeline(cmd)
		if err != nil {
			return err
		}

		cut, err := p.CutClips(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		log.Info().Int("clips", len(cut)).Msg("clips cut")
		return nil
	},
}

var subtitlesCmd = &cobra.Command{
	Use:   "subtitles",
	Short: "Transcribe cut clips and burn captions",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, _, err := newPipeline(cmd)
		if err != nil {
			return err
		}

		subtitled, err := p.GenerateSubtitles(cmd.Context())
		if err != nil {
			return err
		}

		log.Info().Int("subtitled", len(subtitled)).Msg("subtitles complete")
		return nil
	},
}

var (
	composeClipsDir  string
	composeOutDir    string
	composeOverlay   string
	composeWidth     int
	composeHeight    int
	composeSubMode   string
	composeSubFile   string
	composeSubDir    string
	composeNoSmart   bool
	composeExpansion float64
)

var composeCmd = &cobra.Command{
	Use:   "compose",
	Short: "Compose clips onto the vertical canvas",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, _, err := newPipeline(cmd)
		if err != nil {
			return err
		}

		req := pipeline.ComposeRequest{
			ClipsDir:     composeClipsDir,
			OutDir:       composeOutDir,
			OverlayImage: composeOverlay,
			CanvasWidth:  composeWidth,
			CanvasHeight: composeHeight,
			SubtitleMode: composeSubMode,
			SubtitleFile: composeSubFile,
			SubtitleDir:  composeSubDir,
			Expansion:    composeExpansion,
		}
		if composeNoSmart {
			off := false
			req.SmartCrop = &off
		}

		report, err := p.ComposeClips(cmd.Context(), req)
		if err != nil {
			return err
		}

		report.Render(os.Stdout)
		if report.Failed() > 0 {
			return fmt.Errorf("%d of %d clips failed", report.Failed(), len(report.Results))
		}
		return nil
	},
}

func init() {
	composeCmd.Flags().StringVar(&composeClipsDir, "clips-dir", "", "directory of clips to compose (default: config clips_dir)")
	composeCmd.Flags().StringVar(&composeOutDir, "out-dir", "", "output directory (default: config designed_dir)")
	composeCmd.Flags().StringVar(&composeOverlay, "overlay", "", "overlay template image (default: config template)")
	composeCmd.Flags().IntVar(&composeWidth, "width", 0, "canvas width (default: config)")
	composeCmd.Flags().IntVar(&composeHeight, "height", 0, "canvas height (default: config)")
	composeCmd.Flags().StringVar(&composeSubMode, "subtitles", "", "subtitle mode: off, auto, or file (default: config)")
	composeCmd.Flags().StringVar(&composeSubFile, "subtitle-file", "", "explicit subtitle track for --subtitles=file")
	composeCmd.Flags().StringVar(&composeSubDir, "subtitle-dir", "", "directory searched for <clip>.srt in auto mode")
	composeCmd.Flags().BoolVar(&composeNoSmart, "no-smart-crop", false, "always use the centered crop")
	composeCmd.Flags().Float64Var(&composeExpansion, "expansion", 0, "crop expansion factor (default: config)")
}

var pipelineCmd = &cobra.Command{
	Use:   "pipeline [url]",
	Short: "Run the full workflow: fetch, cut, subtitle, compose",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, _, err := newPipeline(cmd)
		if err != nil {
			return err
		}

		report, err := p.Complete(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		report.Render(os.Stdout)
		if report.Failed() > 0 {
			return fmt.Errorf("%d of %d clips failed", report.Failed(), len(report.Results))
		}
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the pipeline over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, cfg, err := newPipeline(cmd)
		if err != nil {
			return err
		}

		return server.New(log.Logger, cfg, p).Run()
	},
}
