// Package main - canvasdetect runs the canvas detector against image files or
// a live capture device.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nvr-ai/go-canvas/detector"
	"github.com/nvr-ai/go-canvas/framing"
	"github.com/nvr-ai/go-canvas/images"
	"github.com/nvr-ai/go-canvas/inference"
	"github.com/nvr-ai/go-canvas/inference/detectors"
	"github.com/nvr-ai/go-canvas/logging"
	"github.com/nvr-ai/go-canvas/models/postprocess"
	"github.com/nvr-ai/go-canvas/profiler"
	"github.com/nvr-ai/go-canvas/scheduler"
	"github.com/nvr-ai/go-canvas/util"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
	"golang.org/x/sync/errgroup"
)

const (
	flagLogLevel      = "log-level"
	flagConfig        = "config"
	flagModel         = "model"
	flagMinConfidence = "min-confidence"
	flagIoU           = "iou"
	flagBusyPolicy    = "busy-policy"
	flagDevice        = "device"
	flagShowWindow    = "show-window"
	flagReport        = "report-interval"
)

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	detectorFlags := []cli.Flag{
		&cli.StringFlag{Name: flagConfig, Usage: "YAML detector config file"},
		&cli.StringFlag{Name: flagModel, Usage: "path to the ONNX canvas model (overrides config)"},
		&cli.Float64Flag{Name: flagMinConfidence, Usage: "minimum confidence to keep a detection (overrides config)"},
		&cli.Float64Flag{Name: flagIoU, Usage: "suppression IoU threshold (overrides config)"},
		&cli.StringFlag{Name: flagBusyPolicy, Usage: "reject or block when a detection is in flight (overrides config)"},
	}

	return &cli.App{
		Name:  "canvasdetect",
		Usage: "locate drawing canvases in images",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: flagLogLevel, Value: "info", Usage: "debug, info, warn or error"},
		},
		Commands: []*cli.Command{
			{
				Name:      "detect",
				Usage:     "run detection on image files or directories of frames",
				ArgsUsage: "PATH...",
				Flags:     detectorFlags,
				Action:    detectAction,
			},
			{
				Name:  "watch",
				Usage: "run detection on a capture device and report the framing transform",
				Flags: append([]cli.Flag{
					&cli.IntFlag{Name: flagDevice, Value: 0, Usage: "video capture device ID"},
					&cli.BoolFlag{Name: flagShowWindow, Usage: "draw detections in a window"},
					&cli.DurationFlag{Name: flagReport, Value: profiler.DefaultReportInterval, Usage: "interval between timing reports"},
				}, detectorFlags...),
				Action: watchAction,
			},
		},
	}
}

// detectorConfig merges the config file with flag overrides.
func detectorConfig(c *cli.Context) (detectors.Config, error) {
	cfg := detectors.DefaultConfig()
	if path := c.String(flagConfig); path != "" {
		loaded, err := detectors.LoadConfig(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	if c.IsSet(flagModel) {
		cfg.ModelPath = c.String(flagModel)
	}
	if c.IsSet(flagMinConfidence) {
		cfg.MinConfidence = float32(c.Float64(flagMinConfidence))
	}
	if c.IsSet(flagIoU) {
		cfg.IoUThreshold = float32(c.Float64(flagIoU))
	}
	if c.IsSet(flagBusyPolicy) {
		cfg.BusyPolicy = inference.BusyPolicy(c.String(flagBusyPolicy))
	}
	return cfg, cfg.Validate()
}

func openDetector(c *cli.Context, logger *zap.Logger) (*detector.Detector, error) {
	cfg, err := detectorConfig(c)
	if err != nil {
		return nil, err
	}
	logger.Info("opening detector",
		zap.String("model", cfg.ModelPath),
		zap.String("backend", string(cfg.Provider.Backend)),
		zap.Float32("min_confidence", cfg.MinConfidence),
		zap.Float32("iou_threshold", cfg.IoUThreshold))
	return detector.Open(cfg, detector.WithLogger(logger))
}

func newLogger(c *cli.Context) (*zap.Logger, error) {
	return logging.NewLogger("canvasdetect", c.String(flagLogLevel))
}

func detectAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("at least one image path is required")
	}
	logger, err := newLogger(c)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	files, err := util.LoadImages(c.Args().Slice())
	if err != nil {
		return err
	}

	det, err := openDetector(c, logger)
	if err != nil {
		return err
	}
	defer det.Close()

	prof := profiler.New(logger)
	defer prof.Report()

	for _, file := range files {
		done := prof.StartOperation("decode")
		img, err := file.Decode()
		done()
		if err != nil {
			logger.Warn("skipping image", zap.Error(err))
			continue
		}
		start := time.Now()
		dets, err := det.Detect(c.Context, img)
		latency := time.Since(start)
		prof.Record("detect", latency)
		if err != nil {
			return errors.Wrapf(err, "detecting %s", file.Path)
		}
		printDetections(c.App.Writer, file.Path, img, latency, dets)
	}
	return nil
}

// printDetections writes one summary line for a frame followed by one line
// per detection.
func printDetections(w io.Writer, path string, img *images.Image, latency time.Duration, dets []postprocess.Detection) {
	fmt.Fprintf(w, "%s (%dx%d, %s): %d detection(s)\n",
		path, img.Width, img.Height, latency.Round(time.Millisecond), len(dets))
	for _, d := range dets {
		b := d.BoundingBox
		fmt.Fprintf(w, "  %.4f  x=%.1f y=%.1f w=%.1f h=%.1f\n",
			d.Confidence, b.X, b.Y, b.Width, b.Height)
	}
}

func watchAction(c *cli.Context) error {
	logger, err := newLogger(c)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	det, err := openDetector(c, logger)
	if err != nil {
		return err
	}
	defer det.Close()

	deviceID := c.Int(flagDevice)
	webcam, err := gocv.OpenVideoCapture(deviceID)
	if err != nil {
		return errors.Wrapf(err, "opening capture device %d", deviceID)
	}
	defer webcam.Close()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	smoother := framing.NewSmoother(framing.DefaultLerpFactor)
	prof := profiler.New(logger)
	results := make(chan scheduler.Result, 1)
	sched := scheduler.New(det, func(r scheduler.Result) {
		if r.Err == nil {
			prof.Record("detect", r.Latency)
		}
		select {
		case results <- r:
		default:
		}
	}, scheduler.WithLogger(logger))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sched.Run(ctx)
	})
	g.Go(func() error {
		return prof.Run(ctx, c.Duration(flagReport))
	})
	g.Go(func() error {
		defer sched.Stop()
		return capture(ctx, webcam, sched, c.Bool(flagShowWindow), results, smoother, prof, logger)
	})

	err = g.Wait()
	st := sched.Stats()
	logger.Info("watch stopped",
		zap.Uint64("published", st.Published),
		zap.Uint64("processed", st.Processed),
		zap.Uint64("dropped", st.Dropped),
		zap.Uint64("failed", st.Failed))
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// capture reads frames until ctx is done, publishing each to the scheduler
// and stepping the framing transform once per frame.
func capture(
	ctx context.Context,
	webcam *gocv.VideoCapture,
	sched *scheduler.Scheduler,
	showWindow bool,
	results <-chan scheduler.Result,
	smoother *framing.Smoother,
	prof *profiler.Profiler,
	logger *zap.Logger,
) error {
	frame := gocv.NewMat()
	defer frame.Close()
	bgra := gocv.NewMat()
	defer bgra.Close()

	var window *gocv.Window
	if showWindow {
		window = gocv.NewWindow("canvasdetect")
		defer window.Close()
	}

	target := framing.Identity()
	var last scheduler.Result
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		done := prof.StartOperation("capture")
		if ok := webcam.Read(&frame); !ok {
			return errors.New("capture device closed")
		}
		done()
		if frame.Empty() {
			continue
		}

		gocv.CvtColor(frame, &bgra, gocv.ColorBGRToBGRA)
		sched.Publish(&images.Image{
			Format: images.PixelFormatBGRA,
			Data:   bgra.ToBytes(),
			Width:  bgra.Cols(),
			Height: bgra.Rows(),
		})

		select {
		case r := <-results:
			last = r
			if r.Err != nil {
				logger.Warn("detection failed", zap.Stringer("frame", r.Frame.ID), zap.Error(r.Err))
				break
			}
			target = framing.Target(r.Detections, frame.Cols(), frame.Rows())
			logger.Debug("detections",
				zap.Stringer("frame", r.Frame.ID),
				zap.Int("count", len(r.Detections)),
				zap.Duration("latency", r.Latency))
		default:
		}

		t := smoother.Step(target)
		logger.Debug("framing", zap.Float32("x", t.X), zap.Float32("y", t.Y), zap.Float32("scale", t.Scale))

		if window != nil {
			overlay(&frame, last)
			window.IMShow(frame)
			window.WaitKey(1)
		}
	}
}
