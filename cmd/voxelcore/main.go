package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pkg/profile"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/voxelcore/internal/config"
	"github.com/zeusync/voxelcore/internal/core/observability/log"
	"github.com/zeusync/voxelcore/internal/injector"
)

type pathList []string

func (p *pathList) String() string { return strings.Join(*p, ",") }

func (p *pathList) Set(v string) error {
	*p = append(*p, v)
	return nil
}

func main() {
	var paths pathList
	flag.Var(&paths, "config", "scene file, YAML or JSON; repeat for several worlds")
	frames := flag.Int("frames", -1, "frames per world; a negative value keeps the config setting")
	kind := flag.String("profile", "", "profile to record: cpu, mem, block, mutex, trace or goroutine")
	profileDir := flag.String("profile-dir", ".", "directory for profile output")
	level := flag.String("log-level", "info", "driver log level")
	flag.Parse()

	lvl, err := log.ParseLevel(*level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "at least one -config is required")
		flag.Usage()
		os.Exit(2)
	}

	logger := log.New(lvl)
	code := 0
	if err := run(logger, paths, *frames, *kind, *profileDir); err != nil {
		logger.Error("voxelcore failed", log.Error(err))
		code = 1
	}
	_ = logger.Sync()
	os.Exit(code)
}

func run(logger log.Log, paths []string, frames int, kind, dir string) error {
	cfgs := make([]*config.Config, 0, len(paths))
	for _, p := range paths {
		cfg, err := config.LoadFile(p)
		if err != nil {
			return err
		}
		cfgs = append(cfgs, cfg)
	}

	if kind == "" {
		for _, c := range cfgs {
			if c.Profile != "" {
				kind = c.Profile
				break
			}
		}
	}
	if kind != "" {
		mode, err := profileMode(kind)
		if err != nil {
			return err
		}
		logger.Info("profiling", log.String("kind", kind), log.String("dir", dir))
		defer profile.Start(mode, profile.ProfilePath(dir), profile.Quiet, profile.NoShutdownHook).Stop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	for _, cfg := range cfgs {
		g.Go(func() error {
			return runWorld(ctx, cfg, frames)
		})
	}
	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		logger.Info("interrupted")
		return nil
	}
	return err
}

func runWorld(ctx context.Context, cfg *config.Config, frames int) error {
	w, cleanup, err := injector.InitializeWorld(cfg)
	if err != nil {
		return fmt.Errorf("%s: %w", cfg.Scene.Name, err)
	}
	defer cleanup()
	defer func() { _ = w.Close() }()

	if _, err := w.Load(cfg.Scene); err != nil {
		return fmt.Errorf("%s: %w", cfg.Scene.Name, err)
	}
	n := cfg.Frames
	if frames >= 0 {
		n = frames
	}
	if err := w.Run(ctx, n); err != nil {
		return fmt.Errorf("%s: %w", cfg.Scene.Name, err)
	}
	w.Report()
	return nil
}

func profileMode(kind string) (func(*profile.Profile), error) {
	switch kind {
	case "cpu":
		return profile.CPUProfile, nil
	case "mem":
		return profile.MemProfile, nil
	case "block":
		return profile.BlockProfile, nil
	case "mutex":
		return profile.MutexProfile, nil
	case "trace":
		return profile.TraceProfile, nil
	case "goroutine":
		return profile.GoroutineProfile, nil
	default:
		return nil, fmt.Errorf("unknown profile %q", kind)
	}
}
