package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/codegangsta/cli"
	"github.com/wbrown/img2ascii"
	"github.com/wbrown/img2ascii/imageutil"
)

const (
	version            = "1.0.0"
	maxOutputDimension = 1000
)

func init() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version, V",
		Usage: "print the version and exit",
	}
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Fprintf(c.App.Writer, "%s %s\n", c.App.Name, c.App.Version)
	}
}

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr, os.LookupEnv, img2ascii.StdoutIsTerminal()))
}

// run executes one invocation and returns the process exit code.
func run(args []string, stdout, stderr io.Writer, env img2ascii.Env, terminal bool) int {
	s := &session{stdout: stdout, stderr: stderr, env: env, terminal: terminal}
	app := newApp(s)
	if err := app.Run(hoistFlags(args, app.Flags)); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return s.code
}

// session carries the I/O of one invocation and its exit code.
type session struct {
	stdout   io.Writer
	stderr   io.Writer
	env      img2ascii.Env
	terminal bool
	code     int
}

func newApp(s *session) *cli.App {
	app := cli.NewApp()
	app.Name = "img2ascii"
	app.Version = version
	app.Usage = "render PNG and JPEG images as ASCII art"
	app.UsageText = "img2ascii [options] <input.(png|jpg|jpeg)> [output_width] [output_height] [output.txt]\n\n" +
		"   output_width   output width in chars (default: 80, max 1000)\n" +
		"   output_height  output height in lines (default: 40, max 1000)\n" +
		"   output.txt     output file (default: stdout)"
	app.Writer = s.stdout
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "color",
			Usage: "color `MODE`: auto, always or never",
			Value: "auto",
		},
		cli.BoolFlag{
			Name:  "ansi",
			Usage: "force ANSI color output (alias for --color always)",
		},
		cli.BoolFlag{
			Name:  "no-ansi",
			Usage: "disable ANSI color output (alias for --color never)",
		},
		cli.StringFlag{
			Name:  "palette",
			Usage: "shading `PROFILE`: classic, smooth or blocks",
			Value: "classic",
		},
		cli.Float64Flag{
			Name:  "gamma",
			Usage: "`GAMMA` = 1.0 gives the original image. Less than 1.0 darkens, greater than 1.0 lightens.",
			Value: 1.0,
		},
		cli.Float64Flag{
			Name:  "brightness",
			Usage: "`BRIGHTNESS` in [-100, 100], 0 gives the original image.",
		},
		cli.Float64Flag{
			Name:  "contrast",
			Usage: "`CONTRAST` in [-100, 100], 0 gives the original image.",
		},
		cli.Float64Flag{
			Name:  "sharpen",
			Usage: "`SIGMA` of an unsharp mask applied before rendering, 0 disables it.",
		},
		cli.Float64Flag{
			Name:  "sigmoid-midpoint",
			Usage: "`MIDPOINT` of the sigmoidal contrast curve, between 0 and 1.",
			Value: 0.5,
		},
		cli.Float64Flag{
			Name:  "sigmoid-factor",
			Usage: "`FACTOR` of the sigmoidal contrast curve, 0 disables it.",
		},
		cli.BoolFlag{
			Name:  "invert",
			Usage: "swap light and dark before rendering",
		},
		cli.StringFlag{
			Name:  "preview",
			Usage: "also draw the result to a PNG at `PATH`",
		},
		cli.StringFlag{
			Name:  "preview-font",
			Usage: "TrueType font `FILE` for --preview (default: built-in 7x13)",
		},
		cli.Float64Flag{
			Name:  "preview-size",
			Usage: "font `POINTS` for --preview-font",
			Value: img2ascii.DefaultPreviewFontSize,
		},
	}
	app.OnUsageError = func(c *cli.Context, err error, _ bool) error {
		return s.usageError(c, err)
	}
	app.Action = s.action
	return app
}

// invocation is a fully parsed command line.
type invocation struct {
	input       string
	output      string
	config      img2ascii.Config
	colorMode   img2ascii.ColorMode
	adjustments imageutil.Adjustments
	preview     img2ascii.PreviewOptions
	previewPath string
}

func (s *session) action(c *cli.Context) error {
	if len(c.Args()) == 0 {
		cli.ShowAppHelp(c)
		s.code = 1
		return nil
	}

	inv, err := parseInvocation(c)
	if err != nil {
		return s.usageError(c, err)
	}

	if err := s.execute(inv); err != nil {
		fmt.Fprintf(s.stderr, "error: %v\n", err)
		s.code = 1
	}
	return nil
}

// usageError reports a bad command line followed by the usage text.
func (s *session) usageError(c *cli.Context, err error) error {
	fmt.Fprintf(s.stderr, "error: %v\n", err)
	cli.ShowAppHelp(c)
	s.code = 1
	return nil
}

func parseInvocation(c *cli.Context) (*invocation, error) {
	args := c.Args()
	if len(args) > 4 {
		return nil, &img2ascii.ConfigError{
			Field: "arguments",
			Err:   errors.New("too many positional arguments"),
		}
	}

	inv := &invocation{
		input:  args[0],
		config: img2ascii.DefaultConfig(),
	}

	var err error
	if len(args) > 1 {
		if inv.config.Width, err = parseDimension("output_width", args[1]); err != nil {
			return nil, err
		}
	}
	if len(args) > 2 {
		if inv.config.Height, err = parseDimension("output_height", args[2]); err != nil {
			return nil, err
		}
	}
	if len(args) > 3 {
		inv.output = args[3]
	}

	if inv.config.Palette, err = img2ascii.ParsePalette(c.String("palette")); err != nil {
		return nil, err
	}
	if inv.colorMode, err = colorMode(c); err != nil {
		return nil, err
	}

	inv.adjustments = imageutil.Adjustments{
		Gamma:           c.Float64("gamma"),
		Brightness:      c.Float64("brightness"),
		Contrast:        c.Float64("contrast"),
		Sharpen:         c.Float64("sharpen"),
		SigmoidMidpoint: c.Float64("sigmoid-midpoint"),
		SigmoidFactor:   c.Float64("sigmoid-factor"),
		Invert:          c.Bool("invert"),
	}

	inv.previewPath = c.String("preview")
	inv.preview = img2ascii.PreviewOptions{
		FontPath: c.String("preview-font"),
		FontSize: c.Float64("preview-size"),
	}
	return inv, nil
}

// colorMode resolves the color flags. --color wins over the legacy
// aliases, and --no-ansi wins over --ansi.
func colorMode(c *cli.Context) (img2ascii.ColorMode, error) {
	switch {
	case c.IsSet("color"):
		return img2ascii.ParseColorMode(c.String("color"))
	case c.Bool("no-ansi"):
		return img2ascii.ColorNever, nil
	case c.Bool("ansi"):
		return img2ascii.ColorAlways, nil
	}
	return img2ascii.ColorAuto, nil
}

func parseDimension(name, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 || n > maxOutputDimension {
		return 0, &img2ascii.ConfigError{
			Field: name,
			Value: value,
			Err:   fmt.Errorf("must be an integer in 1..%d", maxOutputDimension),
		}
	}
	return n, nil
}

func (s *session) execute(inv *invocation) error {
	img, err := imageutil.LoadRaster(inv.input)
	if err != nil {
		return err
	}
	img = inv.adjustments.Apply(img)

	toFile := inv.output != ""
	inv.config.Color = img2ascii.ResolveColor(inv.colorMode, s.env, toFile, s.terminal)
	r := img2ascii.NewRenderer(
		img2ascii.WithConfig(inv.config),
		img2ascii.WithWarnings(s.stderr),
	)

	if inv.previewPath == "" {
		return s.writeText(r, img, inv.output)
	}

	// A preview needs the grid anyway, so render once and replay it.
	grid, err := r.RenderGrid(img)
	if err != nil {
		return err
	}
	if err := s.writeGrid(grid, inv.config.Color, inv.output); err != nil {
		return err
	}
	inv.preview.Color = inv.config.Color
	if err := img2ascii.SavePreviewPNG(grid, inv.previewPath, inv.preview); err != nil {
		return err
	}
	fmt.Fprintf(s.stdout, "preview saved to: %s\n", inv.previewPath)
	return nil
}

func (s *session) writeText(r *img2ascii.Renderer, img *imageutil.GrayImage, output string) error {
	return s.withOutput(output, func(w io.Writer) error {
		return r.Render(w, img)
	})
}

func (s *session) writeGrid(g *img2ascii.Grid, color bool, output string) error {
	return s.withOutput(output, func(w io.Writer) error {
		return g.Emit(w, color)
	})
}

// withOutput hands write the output file, or stdout when path is empty.
func (s *session) withOutput(path string, write func(io.Writer) error) error {
	if path == "" {
		return write(s.stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create output file %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(s.stdout, "ascii art saved to: %s\n", path)
	return nil
}

// hoistFlags moves flags ahead of the positional arguments so they may
// appear anywhere on the command line. Numeric arguments such as "-5" stay
// positional and are rejected later as dimensions.
func hoistFlags(args []string, flags []cli.Flag) []string {
	if len(args) == 0 {
		return args
	}

	takesValue := make(map[string]bool)
	for _, f := range flags {
		if _, ok := f.(cli.BoolFlag); ok {
			continue
		}
		for _, name := range strings.Split(f.GetName(), ",") {
			takesValue[strings.TrimSpace(name)] = true
		}
	}

	var hoisted, positional []string
	rest := args[1:]
	for i := 0; i < len(rest); i++ {
		arg := rest[i]
		if arg == "--" {
			positional = append(positional, rest[i+1:]...)
			break
		}
		if !isFlag(arg) {
			positional = append(positional, arg)
			continue
		}
		hoisted = append(hoisted, arg)
		name := strings.TrimLeft(arg, "-")
		if !strings.Contains(name, "=") && takesValue[name] && i+1 < len(rest) {
			i++
			hoisted = append(hoisted, rest[i])
		}
	}

	out := make([]string, 0, len(args)+1)
	out = append(out, args[0])
	out = append(out, hoisted...)
	if len(positional) > 0 {
		out = append(out, "--")
		out = append(out, positional...)
	}
	return out
}

func isFlag(arg string) bool {
	if len(arg) < 2 || arg[0] != '-' {
		return false
	}
	_, err := strconv.Atoi(arg)
	return err != nil
}
