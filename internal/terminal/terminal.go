package terminal

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"strings"

	"github.com/nfnt/resize"
)

const kittyChunk = 4096

type Capabilities struct {
	TrueColor   bool
	Kitty       bool
	TermProgram string
}

func DetectCapabilities() *Capabilities {
	return detect(os.Getenv)
}

func detect(getenv func(string) string) *Capabilities {
	colorterm := strings.ToLower(getenv("COLORTERM"))
	caps := &Capabilities{
		TrueColor:   colorterm == "truecolor" || colorterm == "24bit",
		TermProgram: getenv("TERM_PROGRAM"),
	}

	// kitty graphics are opt-in
	switch strings.ToLower(getenv("COVERGLOW_KITTY_GRAPHICS")) {
	case "1", "true", "yes", "on":
		caps.Kitty = true
		if caps.TermProgram == "" {
			caps.TermProgram = "kitty"
		}
	}

	return caps
}

// Reset restores cursor, attributes, the main screen and mouse reporting.
func Reset() {
	reset(os.Stdout)
	os.Stdout.Sync()
}

func reset(w io.Writer) {
	for _, seq := range []string{
		"\033[?25h",
		"\033[0m",
		"\033[?1049l",
		"\033[?1000l",
		"\033[?1002l",
		"\033[?1003l",
		"\033[?1006l",
	} {
		io.WriteString(w, seq)
	}
}

// EncodeKitty transmits img as a kitty graphics escape sequence sized to
// cols x rows cells, keeping its aspect ratio.
func EncodeKitty(img image.Image, cols int, rows int) string {
	if img == nil || cols < 1 || rows < 1 {
		return ""
	}

	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return ""
	}

	// cells are roughly twice as tall as they are wide
	w, h := float64(cols*10), float64(rows*20)
	ratio := float64(b.Dx()) / float64(b.Dy())
	if ratio > w/h {
		h = w / ratio
	} else {
		w = h * ratio
	}

	resized := resize.Resize(uint(max(w, 10)), uint(max(h, 10)), img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := png.Encode(&buf, resized); err != nil {
		return ""
	}
	payload := base64.StdEncoding.EncodeToString(buf.Bytes())

	var out strings.Builder
	for start := 0; start < len(payload); start += kittyChunk {
		end := min(start+kittyChunk, len(payload))
		more := 0
		if end < len(payload) {
			more = 1
		}

		if start == 0 {
			fmt.Fprintf(&out, "\x1b_Ga=T,f=100,c=%d,r=%d,m=%d;%s\x1b\\", cols, rows, more, payload[start:end])
		} else {
			fmt.Fprintf(&out, "\x1b_Gm=%d;%s\x1b\\", more, payload[start:end])
		}
	}

	return out.String()
}
