// Command psxcore is the CLI front-end: it parses flags via urfave/cli,
// builds a config.Config, loads the BIOS/disc/EXE, and hands the
// assembled Console to the hostharness for real-time playback or to a
// headless batch loop for scripted/digest runs.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/retropix/psxcore/cdrom"
	"github.com/retropix/psxcore/config"
	"github.com/retropix/psxcore/debug/script"
	"github.com/retropix/psxcore/digest"
	"github.com/retropix/psxcore/emulator"
	"github.com/retropix/psxcore/hostharness"
	"github.com/retropix/psxcore/internal/logger"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "psxcore",
		Usage: "run a PS1 disc image or sideload EXE",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bios", Required: true, Usage: "path to a 512 KiB BIOS image"},
			&cli.StringFlag{Name: "disc", Usage: "path to a disc image"},
			&cli.StringFlag{Name: "exe", Usage: "path to a PS-X EXE to sideload"},
			&cli.StringFlag{Name: "region", Value: string(config.RegionNTSCU)},
			&cli.BoolFlag{Name: "fastboot"},
			&cli.BoolFlag{Name: "debug-console", Usage: "set Config.EnableDebugConsole (the CLI does not start the debugger)"},
			&cli.BoolFlag{Name: "statsview", Usage: "set Config.EnableStatsView (the CLI does not start the dashboard)"},
			&cli.StringFlag{Name: "statsview-addr", Value: "localhost:18080"},
			&cli.StringFlag{Name: "script", Usage: "run a Lua automation script instead of the interactive harness"},
			&cli.IntFlag{Name: "frames", Value: 0, Usage: "stop after N frames (0 = run forever)"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log("psxcore", "fatal: %v", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	cfg := config.Default()
	cfg.BIOSPath = ctx.String("bios")
	cfg.DiscPath = ctx.String("disc")
	cfg.EXEPath = ctx.String("exe")
	cfg.Region = config.Region(ctx.String("region"))
	cfg.FastBoot = ctx.Bool("fastboot")
	cfg.EnableDebugConsole = ctx.Bool("debug-console")
	cfg.EnableStatsView = ctx.Bool("statsview")
	cfg.StatsViewAddr = ctx.String("statsview-addr")
	cfg.ScriptPath = ctx.String("script")

	bios, err := os.ReadFile(cfg.BIOSPath)
	if err != nil {
		return fmt.Errorf("reading BIOS: %w", err)
	}

	var disc cdrom.Disc
	if cfg.DiscPath != "" {
		d, err := loadDisc(cfg.DiscPath, cfg.Region)
		if err != nil {
			return err
		}
		disc = d
	}

	console, err := emulator.New(cfg, bios, disc)
	if err != nil {
		return err
	}

	if cfg.EXEPath != "" {
		exe, err := os.ReadFile(cfg.EXEPath)
		if err != nil {
			return fmt.Errorf("reading EXE: %w", err)
		}
		if err := emulator.SideloadEXE(console, exe); err != nil {
			return err
		}
	}

	if cfg.ScriptPath != "" {
		eng := script.NewEngine(console)
		defer eng.Close()
		return eng.RunFile(cfg.ScriptPath)
	}

	if frames := ctx.Int("frames"); frames > 0 {
		vdig := digest.NewVideo()
		for i := 0; i < frames; i++ {
			console.RunFrame()
			vdig.NewFrame(i, console.Bus.GPU, 0, 0, 320, 240)
		}
		fmt.Println(vdig.Hash())
		return nil
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	h := hostharness.New(console, 60, nil, nil)
	err = h.Run(sigCtx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
