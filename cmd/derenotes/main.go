// Command derenotes inspects gameplay recordings and extracts single
// frames from them by index.
package main

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"strings"

	"github.com/kataras/golog"
	"github.com/urfave/cli/v2"

	"github.com/tomosatoP/derenotes/config"
	"github.com/tomosatoP/derenotes/video"
)

var logger = golog.Child("[derenotes]")

func main() {
	app := &cli.App{
		Name:  "derenotes",
		Usage: "frame-accurate access to gameplay recordings",
		Before: func(*cli.Context) error {
			return video.NetworkInitialize()
		},
		After: func(*cli.Context) error {
			return video.NetworkDeinitialize()
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "working root holding config/config.toml",
				Value: ".",
			},
		},
		Commands: []*cli.Command{
			probeCommand(),
			extractCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

func streamFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "format",
			Usage: "container format short name",
		},
		&cli.StringFlag{
			Name:  "hardware",
			Usage: "decode accelerator (e.g. cuda, vaapi); empty decodes in software",
		},
	}
}

// openStream opens the recording named by the first argument, filling
// unset flags from the working root's configuration.
func openStream(ctx *cli.Context) (*video.Stream, error) {
	location := ctx.Args().First()
	if location == "" {
		return nil, fmt.Errorf("no recording given")
	}

	cfg, err := config.Setup(ctx.String("config"))
	if err != nil {
		return nil, err
	}

	opts := video.Options{
		InputFormat: ctx.String("format"),
		Hardware:    ctx.String("hardware"),
	}
	if opts.InputFormat == "" {
		opts.InputFormat = cfg.FileType
	}
	if !ctx.IsSet("hardware") {
		opts.Hardware = cfg.Hardware()
	}

	return video.Open(location, &opts)
}

func probeCommand() *cli.Command {
	return &cli.Command{
		Name:      "probe",
		Usage:     "print the stream properties of a recording",
		ArgsUsage: "<recording>",
		Flags:     streamFlags(),
		Action: func(ctx *cli.Context) error {
			stream, err := openStream(ctx)
			if err != nil {
				return err
			}
			defer stream.Close()

			num, den := stream.TimeBase()

			fmt.Printf("path:          %s\n", stream.Path())
			fmt.Printf("decoder:       %s\n", stream.DecoderName())
			fmt.Printf("pixel format:  %s\n", stream.PixelFormat())
			fmt.Printf("output format: %s\n", stream.OutputPixelFormat())
			fmt.Printf("size:          %dx%d\n", stream.Width(), stream.Height())
			fmt.Printf("frames:        %d\n", stream.TotalFrames())
			fmt.Printf("time base:     %d/%d\n", num, den)
			fmt.Printf("accelerators:  %s\n", strings.Join(stream.HardwareDeviceTypes(), ", "))

			return nil
		},
	}
}

func extractCommand() *cli.Command {
	return &cli.Command{
		Name:      "extract",
		Usage:     "decode one frame of a recording into a PNG file",
		ArgsUsage: "<recording>",
		Flags: append(streamFlags(),
			&cli.IntFlag{
				Name:  "index",
				Usage: "frame index",
			},
			&cli.StringFlag{
				Name:  "output",
				Usage: "PNG file to write",
				Value: "frame.png",
			},
		),
		Action: func(ctx *cli.Context) error {
			stream, err := openStream(ctx)
			if err != nil {
				return err
			}
			defer stream.Close()

			index := ctx.Int("index")

			buf, err := stream.FrameBuffer(index)
			if err != nil {
				return err
			}

			output := ctx.String("output")
			if err := writePNG(output, buf, stream.Width(), stream.Height()); err != nil {
				return err
			}

			logger.Infof("frame %d -> %s", index, output)

			return nil
		},
	}
}

// writePNG encodes a packed RGB frame buffer as a PNG file.
func writePNG(path string, buf []byte, width, height int) error {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		src := buf[y*width*3:]
		dst := img.Pix[y*img.Stride:]

		for x := 0; x < width; x++ {
			dst[x*4+0] = src[x*3+0]
			dst[x*4+1] = src[x*3+1]
			dst[x*4+2] = src[x*3+2]
			dst[x*4+3] = 0xff
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
