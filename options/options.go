// Package options holds the configuration of the combiner viewer. Values
// come from defaults, then an optional TOML file, then command line flags
// that were set explicitly.
package options

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

type Options struct {
	Width    int  `toml:"width"`
	Height   int  `toml:"height"`
	Headless bool `toml:"headless"`
	// Frames stops the viewer after this many frames; 0 runs until closed.
	Frames int `toml:"frames"`
	FPS    int `toml:"fps"`

	// Record is a video file to encode frames into.
	Record     string `toml:"record"`
	Codec      string `toml:"codec"`
	HWAccel    bool   `toml:"hwaccel"`
	FFmpegPath string `toml:"ffmpeg"`
	// Snapshot is a PNG written from the last frame.
	Snapshot string `toml:"snapshot"`

	Capacity   int        `toml:"capacity"`
	Translate  bool       `toml:"translate"`
	ClearColor [4]float32 `toml:"clear_color"`
	// Texture is an image file sampled by textured formulas.
	Texture string `toml:"texture"`
	// Formulas are packed formula ids, decimal or 0x prefixed hex. Empty
	// selects the built in set.
	Formulas []string `toml:"formulas"`
}

func Default() Options {
	return Options{
		Width:      1280,
		Height:     720,
		FPS:        60,
		Codec:      "h264",
		Capacity:   64,
		ClearColor: [4]float32{1, 0, 0, 1},
	}
}

// Load decodes the TOML file at path over o. Unknown keys are an error.
func Load(path string, o *Options) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("options: %w", err)
	}
	defer f.Close()
	dec := toml.NewDecoder(bufio.NewReader(f))
	dec.DisallowUnknownFields()
	if err := dec.Decode(o); err != nil {
		return fmt.Errorf("options: %s: %w", path, err)
	}
	return o.Validate()
}

func (o *Options) Validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("options: invalid size %dx%d", o.Width, o.Height)
	}
	if o.Capacity <= 0 {
		return fmt.Errorf("options: capacity must be positive, got %d", o.Capacity)
	}
	if _, err := o.FormulaIDs(); err != nil {
		return err
	}
	return nil
}

// FormulaIDs parses Formulas.
func (o *Options) FormulaIDs() ([]uint32, error) {
	ids := make([]uint32, 0, len(o.Formulas))
	for _, s := range o.Formulas {
		id, err := ParseID(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ParseID parses a formula id written in decimal or 0x prefixed hex.
func ParseID(s string) (uint32, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 32)
	if err != nil {
		return 0, fmt.Errorf("options: formula id %q: %w", s, err)
	}
	return uint32(v), nil
}

// Flags binds command line flags to a set of options.
type Flags struct {
	fs     *flag.FlagSet
	config string
	cli    Options
}

// NewFlags registers the viewer flags on fs.
func NewFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{fs: fs, cli: Default()}
	c := &f.cli
	fs.StringVar(&f.config, "config", "", "TOML configuration file")
	fs.IntVar(&c.Width, "width", c.Width, "Width of the output")
	fs.IntVar(&c.Height, "height", c.Height, "Height of the output")
	fs.BoolVar(&c.Headless, "headless", c.Headless, "Render to an offscreen EGL surface")
	fs.IntVar(&c.Frames, "frames", c.Frames, "Stop after this many frames (0 runs until closed)")
	fs.IntVar(&c.FPS, "fps", c.FPS, "Frames per second for recording")
	fs.StringVar(&c.Record, "record", c.Record, "Encode frames into this video file")
	fs.StringVar(&c.Codec, "codec", c.Codec, "Video codec: h264 or hevc")
	fs.BoolVar(&c.HWAccel, "hwaccel", c.HWAccel, "Use the platform hardware encoder")
	fs.StringVar(&c.FFmpegPath, "ffmpeg", c.FFmpegPath, "Path to ffmpeg executable")
	fs.StringVar(&c.Snapshot, "snapshot", c.Snapshot, "Write the last frame to this PNG file")
	fs.IntVar(&c.Capacity, "capacity", c.Capacity, "Program cache capacity")
	fs.BoolVar(&c.Translate, "translate", c.Translate, "Pass shaders through the shader translator")
	fs.StringVar(&c.Texture, "texture", c.Texture, "Image file for textured formulas")
	fs.Func("formula", "Formula id to show, repeatable", func(s string) error {
		if _, err := ParseID(s); err != nil {
			return err
		}
		c.Formulas = append(c.Formulas, s)
		return nil
	})
	return f
}

// Resolve applies defaults, the config file and then every flag that was
// set on the command line. Call it after the flag set is parsed.
func (f *Flags) Resolve() (Options, error) {
	o := Default()
	if f.config != "" {
		if err := Load(f.config, &o); err != nil {
			return o, err
		}
	}
	f.fs.Visit(func(fl *flag.Flag) {
		c := &f.cli
		switch fl.Name {
		case "width":
			o.Width = c.Width
		case "height":
			o.Height = c.Height
		case "headless":
			o.Headless = c.Headless
		case "frames":
			o.Frames = c.Frames
		case "fps":
			o.FPS = c.FPS
		case "record":
			o.Record = c.Record
		case "codec":
			o.Codec = c.Codec
		case "hwaccel":
			o.HWAccel = c.HWAccel
		case "ffmpeg":
			o.FFmpegPath = c.FFmpegPath
		case "snapshot":
			o.Snapshot = c.Snapshot
		case "capacity":
			o.Capacity = c.Capacity
		case "translate":
			o.Translate = c.Translate
		case "texture":
			o.Texture = c.Texture
		case "formula":
			o.Formulas = c.Formulas
		}
	})
	return o, o.Validate()
}
