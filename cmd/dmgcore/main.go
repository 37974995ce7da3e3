package main

import (
	"errors"
	"log/slog"
	"os"

	"github.com/urfave/cli"

	"dmgcore/gbcore"
	"dmgcore/gbcore/render"
	"dmgcore/gbcore/timing"
)

func main() {
	app := cli.NewApp()
	app.Name = "dmgcore"
	app.Usage = "dmgcore [options] <ROM file>"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the ROM file",
		},
		cli.StringFlag{
			Name:  "bios",
			Usage: "Path to an optional 256-byte boot ROM",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Run headless for N frames instead of opening a terminal window",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		slog.Error("dmgcore exited with an error", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() == 0 {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
		romPath = c.Args().Get(0)
	}

	rom, err := os.ReadFile(romPath)
	if err != nil {
		return err
	}

	var bios []byte
	if biosPath := c.String("bios"); biosPath != "" {
		bios, err = os.ReadFile(biosPath)
		if err != nil {
			return err
		}
	}

	sys, err := gbcore.NewSystem(rom, bios)
	if err != nil {
		return err
	}

	if frames := c.Int("frames"); frames > 0 {
		return runHeadless(sys, frames)
	}

	term, err := render.NewTerminal(sys)
	if err != nil {
		return err
	}
	return term.Run()
}

func runHeadless(sys *gbcore.System, frames int) error {
	for i := 0; i < frames; i++ {
		for !sys.FrameReady() {
			sys.Update(timing.FrameDuration())
		}
		slog.Info("frame completed", "frame", i+1, "total", frames)
	}
	return nil
}
