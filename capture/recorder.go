package capture

import (
	"fmt"
	"image"
	"io"
	"log"
	"runtime"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

type RecorderOptions struct {
	Output string
	Width  int
	Height int
	FPS    int
	// Codec is "h264" or "hevc".
	Codec string
	// FFmpegPath overrides the ffmpeg binary found on PATH.
	FFmpegPath string
	// HWAccel selects the platform hardware encoder where one is known.
	HWAccel bool
}

func (o RecorderOptions) args(goos string) (inputArgs, outputArgs ffmpeg.KwArgs) {
	inputArgs = ffmpeg.KwArgs{
		"f":         "rawvideo",
		"pix_fmt":   "rgba",
		"s":         fmt.Sprintf("%dx%d", o.Width, o.Height),
		"framerate": o.FPS,
	}
	outputArgs = ffmpeg.KwArgs{"pix_fmt": "yuv420p"}

	hevc := o.Codec == "hevc"
	switch {
	case o.HWAccel && goos == "darwin":
		outputArgs["c:v"] = "h264_videotoolbox"
		if hevc {
			outputArgs["c:v"] = "hevc_videotoolbox"
		}
	case o.HWAccel && goos == "linux":
		outputArgs["c:v"] = "h264_nvenc"
		if hevc {
			outputArgs["c:v"] = "hevc_nvenc"
		}
		outputArgs["preset"] = "p2"
	default:
		outputArgs["c:v"] = "libx264"
		if hevc {
			outputArgs["c:v"] = "libx265"
		}
	}
	if hevc && len(o.Output) > 4 && o.Output[len(o.Output)-4:] == ".mp4" {
		outputArgs["tag:v"] = "hvc1"
	}
	return inputArgs, outputArgs
}

// Recorder pipes raw frames into an ffmpeg process.
type Recorder struct {
	opts   RecorderOptions
	pw     *io.PipeWriter
	errc   chan error
	frames int
}

// NewRecorder starts ffmpeg writing to opts.Output.
func NewRecorder(opts RecorderOptions) (*Recorder, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("capture: invalid frame size %dx%d", opts.Width, opts.Height)
	}
	if opts.FPS <= 0 {
		opts.FPS = 60
	}

	pr, pw := io.Pipe()
	inputArgs, outputArgs := opts.args(runtime.GOOS)
	cmd := ffmpeg.Input("pipe:", inputArgs).
		Output(opts.Output, outputArgs).
		OverWriteOutput().WithInput(pr).ErrorToStdOut()
	if opts.FFmpegPath != "" {
		cmd = cmd.SetFfmpegPath(opts.FFmpegPath)
	}

	r := &Recorder{opts: opts, pw: pw, errc: make(chan error, 1)}
	go func() {
		err := cmd.Run()
		pr.CloseWithError(io.ErrClosedPipe)
		r.errc <- err
	}()
	log.Printf("capture: recording %dx%d@%d to %s (%v)", opts.Width, opts.Height, opts.FPS, opts.Output, outputArgs["c:v"])
	return r, nil
}

// WriteFrame sends img to the encoder. img must match the recorder size.
func (r *Recorder) WriteFrame(img *image.RGBA) error {
	b := img.Bounds()
	if b.Dx() != r.opts.Width || b.Dy() != r.opts.Height {
		return fmt.Errorf("capture: frame is %dx%d, recording %dx%d", b.Dx(), b.Dy(), r.opts.Width, r.opts.Height)
	}
	rowSize := b.Dx() * 4
	for y := 0; y < b.Dy(); y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+rowSize]
		if _, err := r.pw.Write(row); err != nil {
			return fmt.Errorf("capture: frame %d: %w", r.frames, err)
		}
	}
	r.frames++
	return nil
}

// Close flushes the stream and waits for ffmpeg to exit.
func (r *Recorder) Close() error {
	r.pw.Close()
	err := <-r.errc
	log.Printf("capture: wrote %d frames to %s", r.frames, r.opts.Output)
	if err != nil {
		return fmt.Errorf("capture: ffmpeg: %w", err)
	}
	return nil
}
