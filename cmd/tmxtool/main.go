package main

import (
	"fmt"
	"image/png"
	"io"
	"log"
	"os"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/urfave/cli/v2"
	"golang.org/x/image/bmp"

	"github.com/tmxfmt/tmx"
	"github.com/tmxfmt/tmx/psm"
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:  "version, V",
		Usage: "print the version",
	}
}

func loggerFor(c *cli.Context) *log.Logger {
	logger := log.New(io.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func main() {
	app := cli.NewApp()

	app.Name = "tmxtool"
	app.Usage = "PS2 TMX texture container tool"
	app.Version = "1.0.0"

	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:  "verbose, v",
			Usage: "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:      "decode",
			Usage:     "Decode a TMX file to PNG and BMP",
			ArgsUsage: "TMX-FILE OUTPUT-PREFIX",
			Flags: []cli.Flag{
				&cli.IntFlag{Name: "palette", Value: 0, Usage: "palette index to use for indexed images"},
				&cli.IntFlag{Name: "mip", Value: -1, Usage: "mip level, -1 for base"},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}
				logger := loggerFor(c)

				f, err := os.Open(c.Args().Get(0))
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer f.Close()

				img, err := tmx.Parse(f)
				if err != nil {
					return cli.Exit(err, 1)
				}

				raster, err := tmx.ToRaster(img, c.Int("palette"), c.Int("mip"))
				if err != nil {
					return cli.Exit(err, 1)
				}

				prefix := c.Args().Get(1)

				pngFile, err := os.Create(prefix + ".png")
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer pngFile.Close()
				if err := png.Encode(pngFile, raster); err != nil {
					return cli.Exit(err, 1)
				}

				bmpFile, err := os.Create(prefix + ".bmp")
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer bmpFile.Close()
				if err := bmp.Encode(bmpFile, raster); err != nil {
					return cli.Exit(err, 1)
				}

				logger.Printf("decoded %q (%dx%d, %s) to %q\n", c.Args().Get(0), img.Width(), img.Height(), img.PixelFormat(), prefix)
				return nil
			},
		},
		{
			Name:      "encode",
			Usage:     "Encode an image file to TMX",
			ArgsUsage: "IMAGE-FILE TMX-FILE",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "format", Required: true, Usage: "pixel format, e.g. PSMCT32, PSMT8"},
				&cli.StringFlag{Name: "comment", Usage: "user comment string"},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}
				logger := loggerFor(c)

				format, ok := psm.ParseFormat(c.String("format"))
				if !ok {
					return cli.Exit(fmt.Errorf("unknown pixel format %q", c.String("format")), 1)
				}

				src, err := imgio.Open(c.Args().Get(0))
				if err != nil {
					return cli.Exit(err, 1)
				}

				img, err := tmx.FromRaster(tmx.NewRaster(src), format, c.String("comment"))
				if err != nil {
					return cli.Exit(err, 1)
				}

				out, err := os.Create(c.Args().Get(1))
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer out.Close()

				if err := tmx.Serialize(out, img); err != nil {
					return cli.Exit(err, 1)
				}

				logger.Printf("encoded %q (%dx%d, %s) to %q\n", c.Args().Get(0), img.Width(), img.Height(), format, c.Args().Get(1))
				return nil
			},
		},
		{
			Name:      "info",
			Usage:     "Print a TMX file's header summary",
			ArgsUsage: "TMX-FILE",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				f, err := os.Open(c.Args().Get(0))
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer f.Close()

				img, err := tmx.Parse(f)
				if err != nil {
					return cli.Exit(err, 1)
				}

				info := tmx.Stat(img)
				fmt.Printf("dimensions:     %dx%d\n", info.Width, info.Height)
				fmt.Printf("pixel_format:   %s\n", info.PixelFormat)
				if info.PaletteCount > 0 {
					fmt.Printf("palette_format: %s\n", info.PaletteFormat)
					fmt.Printf("palette_count:  %d\n", info.PaletteCount)
				}
				fmt.Printf("mip_count:      %d\n", info.MipCount)
				fmt.Printf("wrap:           h=%d v=%d\n", info.WrapHorizontal, info.WrapVertical)
				fmt.Printf("user_texture_id: %d\n", info.UserTextureID)
				fmt.Printf("user_clut_id:    %d\n", info.UserClutID)
				if info.UserComment != "" {
					fmt.Printf("comment:        %q\n", info.UserComment)
				}
				return nil
			},
		},
		{
			Name:      "batch-decode",
			Usage:     "Decode every .tmx file under a directory to PNG",
			ArgsUsage: "DIRECTORY",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}
				logger := loggerFor(c)
				if err := tmx.BatchDecode(c.Args().Get(0), logger); err != nil {
					return cli.Exit(err, 1)
				}
				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
