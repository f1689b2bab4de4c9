package fileinput

import (
	"bytes"
	"fmt"
	"io"

	"github.com/jcorbin/minilisp/internal/runeio"
)

// Location names a position within an Input stream.
// Line and Col are 1-based; a zero Col names the whole line.
type Location struct {
	Name string
	Line int
	Col  int
}

func (loc Location) String() string {
	if loc.Col == 0 {
		return fmt.Sprintf("%v:%v", loc.Name, loc.Line)
	}
	return fmt.Sprintf("%v:%v:%v", loc.Name, loc.Line, loc.Col)
}

// Line combines a Location along with a bytes.Buffer holding its text.
type Line struct {
	Location
	bytes.Buffer
}

func (il *Line) String() string { return fmt.Sprintf("%v %q", il.Location, il.Buffer.String()) }

// Input implements sequential rune reading through a Queue of one or more
// input streams. The line currently being scanned is tracked to facilitate
// error reporting.
type Input struct {
	cur   io.Reader
	rr    io.RuneReader
	Queue []io.Reader
	Scan  Line
}

// ReadRune reads one rune from the current input stream, appending it into the
// current Scan line, and starting a new Scan line after line feed. After
// reading any rune other than line feed, Scan.Location names that rune.
// Moves on to the next queued stream when the current one is exhausted;
// returns io.EOF only after the last one.
func (in *Input) ReadRune() (rune, int, error) {
	for {
		if in.rr == nil && !in.nextIn() {
			return 0, 0, io.EOF
		}
		r, n, err := in.rr.ReadRune()
		if n > 0 {
			if r == '\n' {
				in.nextLine()
			} else {
				in.Scan.WriteRune(r)
				in.Scan.Col++
			}
			return r, n, nil
		}
		if err == io.EOF {
			in.closeIn()
			continue
		}
		return 0, 0, err
	}
}

func (in *Input) nextLine() {
	in.Scan.Reset()
	in.Scan.Line++
	in.Scan.Col = 0
}

func (in *Input) closeIn() {
	if in.Scan.Len() > 0 {
		in.nextLine()
	}
	if cl, ok := in.cur.(io.Closer); ok {
		cl.Close()
	}
	in.cur, in.rr = nil, nil
}

// Close closes the current stream and any still queued, if they implement
// io.Closer, returning the first error.
func (in *Input) Close() (err error) {
	if cl, ok := in.cur.(io.Closer); ok {
		err = cl.Close()
	}
	for _, r := range in.Queue {
		if cl, ok := r.(io.Closer); ok {
			if cerr := cl.Close(); err == nil {
				err = cerr
			}
		}
	}
	in.cur, in.rr, in.Queue = nil, nil, nil
	return err
}

func (in *Input) nextIn() bool {
	if len(in.Queue) == 0 {
		return false
	}
	r := in.Queue[0]
	in.Queue = in.Queue[1:]
	in.cur, in.rr = r, runeio.NewReader(r)
	in.Scan.Reset()
	in.Scan.Location = Location{Name: nameOf(r), Line: 1}
	return true
}

func nameOf(obj interface{}) string {
	if nom, ok := obj.(interface{ Name() string }); ok {
		return nom.Name()
	}
	return fmt.Sprintf("<unnamed %T>", obj)
}
