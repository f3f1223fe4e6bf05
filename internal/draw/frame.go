package draw

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Terminal mode sequences the game toggles around a session.
const (
	clearScreen = "\033[H\033[2J"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
	mouseOn     = "\033[?1000h\033[?1006h" // press reporting, SGR encoding
	mouseOff    = "\033[?1006l\033[?1000l"
)

// EnterGame prepares the terminal for play: cursor hidden, mouse clicks
// reported, screen blank.
func EnterGame(w io.Writer) {
	io.WriteString(w, hideCursor+mouseOn+clearScreen)
}

// LeaveGame undoes EnterGame.
func LeaveGame(w io.Writer) {
	io.WriteString(w, mouseOff+showCursor+clearScreen)
}

// Frame collects everything drawn for one screen update and sends it to the
// terminal in maxChunkSize pieces on Flush. Positions passed to Text and Line
// are 1-based and relative to the centered play area.
type Frame struct {
	pending bytes.Buffer
	out     *bufio.Writer
	offCol  int
	offRow  int
}

// NewFrame returns a Frame writing to w with the play area shifted by the
// given 0-based terminal offsets.
func NewFrame(w io.Writer, offsetCol, offsetRow int) *Frame {
	return &Frame{
		out:    bufio.NewWriterSize(w, 8192),
		offCol: offsetCol,
		offRow: offsetRow,
	}
}

// SetOffset moves the play area, e.g. after the terminal was resized.
func (f *Frame) SetOffset(offsetCol, offsetRow int) {
	f.offCol = offsetCol
	f.offRow = offsetRow
}

// Write appends raw output, which is how Canvas.Render lands in the frame.
func (f *Frame) Write(p []byte) (int, error) {
	return f.pending.Write(p)
}

// ClearScreen wipes the whole terminal when the frame is flushed.
func (f *Frame) ClearScreen() {
	f.pending.WriteString(clearScreen)
}

// Text places s at col, row.
func (f *Frame) Text(col, row int, s string) {
	fmt.Fprintf(&f.pending, "\033[%d;%dH%s", row+f.offRow, col+f.offCol, s)
}

// Line writes s at the start of row, cut or padded with spaces to width
// columns so that it fully replaces whatever the row held before.
func (f *Frame) Line(row int, s string, width int) {
	if width < 0 {
		width = 0
	}
	if len(s) > width {
		s = s[:width]
	}
	f.Text(1, row, s+strings.Repeat(" ", width-len(s)))
}

// Flush sends the pending output and starts an empty frame.
func (f *Frame) Flush() error {
	data := f.pending.Bytes()
	for len(data) > 0 {
		n := min(len(data), maxChunkSize)
		if _, err := f.out.Write(data[:n]); err != nil {
			f.pending.Reset()
			return err
		}
		data = data[n:]
	}
	f.pending.Reset()
	return f.out.Flush()
}

// TermSizeFunc reports the terminal size in columns and rows.
type TermSizeFunc func() (width, height int, err error)

// DefaultTermSizeFunc asks the terminal attached to stdout.
var DefaultTermSizeFunc TermSizeFunc = func() (int, int, error) {
	return term.GetSize(int(os.Stdout.Fd()))
}
