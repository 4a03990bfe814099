package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	internal "github.com/andronics/shadowfs/shadowfs"
	"github.com/andronics/shadowfs/shadowfs/config"
	"github.com/andronics/shadowfs/shadowfs/vfs"
	"github.com/andronics/shadowfs/shadowfs/watcher"
)

func main() {
	logger := internal.GetLogger()

	app := &cli.App{
		Name:  internal.DefaultAppName,
		Usage: "expose one real directory tree through multiple virtual organizational views",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the config file",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "scan",
				Usage: "scan all sources, rebuild every layer index and print stats",
				Action: func(c *cli.Context) error {
					manager, err := setup(c)
					if err != nil {
						return err
					}
					return printStats(manager)
				},
			},
			{
				Name:      "ls",
				Usage:     "list a virtual directory (empty path lists the layers)",
				ArgsUsage: "[virtual path]",
				Action: func(c *cli.Context) error {
					manager, err := setup(c)
					if err != nil {
						return err
					}
					for _, name := range manager.ListDirectory(c.Args().First()) {
						fmt.Println(name)
					}
					return nil
				},
			},
			{
				Name:      "resolve",
				Usage:     "resolve a virtual path to its real path",
				ArgsUsage: "<virtual path>",
				Action: func(c *cli.Context) error {
					manager, err := setup(c)
					if err != nil {
						return err
					}
					real, ok := manager.ResolvePath(c.Args().First())
					if !ok {
						return cli.Exit("not found", 1)
					}
					fmt.Println(real)
					return nil
				},
			},
			{
				Name:      "info",
				Usage:     "show the scanned snapshot entry for a real path",
				ArgsUsage: "<real path>",
				Action: func(c *cli.Context) error {
					manager, err := setup(c)
					if err != nil {
						return err
					}
					fi, ok := manager.FindByRealPath(c.Args().First())
					if !ok {
						return cli.Exit("not scanned", 1)
					}
					fmt.Printf("name: %s\npath: %s\nreal: %s\next: %s\nsize: %d\nmode: %s\nmtime: %s\n",
						fi.Name, fi.Path, fi.RealPath, fi.Extension, fi.Size, fi.Mode, fi.ModTime.Format(time.RFC3339))
					return nil
				},
			},
			{
				Name:  "stats",
				Usage: "print source, layer and file counts",
				Action: func(c *cli.Context) error {
					manager, err := setup(c)
					if err != nil {
						return err
					}
					return printStats(manager)
				},
			},
			{
				Name:  "watch",
				Usage: "keep indexes fresh by rescanning on filesystem changes",
				Action: func(c *cli.Context) error {
					manager, err := setup(c)
					if err != nil {
						return err
					}
					return runWatch(c.Context, manager)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Fatal().Err(err).Msg("command failed")
	}
}

// setup loads configuration, builds the manager and runs the initial
// scan + rebuild cycle every command relies on.
func setup(c *cli.Context) (*vfs.Manager, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}

	manager, err := config.BuildManager(cfg)
	if err != nil {
		return nil, err
	}

	if _, err := manager.ScanSources(c.Context); err != nil {
		return nil, err
	}
	manager.RebuildIndexes()
	return manager, nil
}

func printStats(manager *vfs.Manager) error {
	stats := manager.Stats()
	fmt.Printf("sources: %d\nlayers:  %d\nfiles:   %d\n", stats.SourceCount, stats.LayerCount, stats.FileCount)
	if !stats.LastScan.IsZero() {
		fmt.Printf("scanned: %s (%s)\n", stats.LastScan.Format(time.RFC3339), stats.LastScanID)
	}
	return nil
}

func runWatch(parent context.Context, manager *vfs.Manager) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	wc := config.AppConfig.ShadowFS.Watch
	w, err := watcher.New(watcher.Config{
		Debounce: time.Duration(wc.DebounceMillis) * time.Millisecond,
		MaxDelay: time.Duration(wc.MaxDelayMillis) * time.Millisecond,
	}, func(ctx context.Context) error {
		if _, err := manager.ScanSources(ctx); err != nil {
			return err
		}
		manager.RebuildIndexes()
		return nil
	})
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Start(ctx, manager.Sources()); err != nil {
		return err
	}

	<-ctx.Done()
	return nil
}
