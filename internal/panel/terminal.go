package panel

import (
	"io"
	"os"
	"sync"

	"codeberg.org/mutker/iroverlay/internal/errors"
	"github.com/mattn/go-colorable"
	"golang.org/x/term"
)

const ErrNotTerminal = errors.ErrorCode("panel_not_terminal")

// Terminal puts stdin in raw mode and delivers key presses on a channel.
type Terminal struct {
	in       *os.File
	out      io.Writer
	fd       int
	oldState *term.State
	keys     chan byte
	stopped  sync.Once
}

// OpenTerminal switches in to raw mode and starts reading keys. Close
// restores the previous mode.
func OpenTerminal(in *os.File) (*Terminal, error) {
	errFactory := errors.New()

	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return nil, errFactory.New(ErrNotTerminal)
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, errFactory.Wrap(ErrNotTerminal, err)
	}

	t := &Terminal{
		in:       in,
		out:      NewOutput(os.Stdout),
		fd:       fd,
		oldState: oldState,
		keys:     make(chan byte, 16),
	}
	go t.read()

	return t, nil
}

// Keys is closed when the input ends.
func (t *Terminal) Keys() <-chan byte {
	return t.keys
}

// Output is where the panel is rendered.
func (t *Terminal) Output() io.Writer {
	return t.out
}

// NewOutput wraps f so the panel's ANSI colors also work on Windows
// consoles without virtual terminal processing, where they are translated
// to console attribute calls.
func NewOutput(f *os.File) io.Writer {
	return colorable.NewColorable(f)
}

// Close restores the terminal. The reader goroutine stays blocked in Read
// until the process exits.
func (t *Terminal) Close() error {
	var err error
	t.stopped.Do(func() {
		err = term.Restore(t.fd, t.oldState)
	})

	return err
}

func (t *Terminal) read() {
	defer close(t.keys)

	buf := make([]byte, 1)
	for {
		n, err := t.in.Read(buf)
		if n > 0 {
			t.keys <- buf[0]
		}
		if err != nil {
			return
		}
	}
}
