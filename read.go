package main

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"

	"github.com/jcorbin/minilisp/internal/fileinput"
	"github.com/jcorbin/minilisp/internal/runeio"
)

// Form is a top-level expression along with where it started in the input.
type Form struct {
	Expr
	Loc fileinput.Location
}

// Reader parses source text from a fileinput.Input into top-level forms.
//
// Tokens are "(", ")", and runs of any other non-space runes. A run is an
// integer literal if it parses as a signed decimal; otherwise it must be a
// reserved name (like + or #t) or match symbolPattern.
type Reader struct {
	in *fileinput.Input

	pending    bool
	pendingR   rune
	pendingLoc fileinput.Location
}

var symbolPattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9\-]*$`)

// NewReader creates a reader consuming in.
func NewReader(in *fileinput.Input) *Reader {
	return &Reader{in: in}
}

// ReadString parses every form in src, attributing locations to name.
func ReadString(name, src string) ([]Form, error) {
	in := fileinput.Input{Queue: []io.Reader{NamedReader(name, strings.NewReader(src))}}
	return NewReader(&in).ReadAll()
}

// NamedReader attaches a name to r, used to label locations in its content.
func NamedReader(name string, r io.Reader) io.Reader {
	return namedReader{r, name}
}

type namedReader struct {
	io.Reader
	name string
}

func (nr namedReader) Name() string { return nr.name }

// ReadAll reads forms until the end of input. It stops at the first error,
// returning the forms read before it.
func (rd *Reader) ReadAll() ([]Form, error) {
	var forms []Form
	for {
		form, err := rd.Read()
		if err == io.EOF {
			return forms, nil
		} else if err != nil {
			return forms, err
		}
		forms = append(forms, form)
	}
}

// Read reads the next top-level form, returning io.EOF at the end of input.
func (rd *Reader) Read() (Form, error) {
	tok, err := rd.next()
	if err != nil {
		return Form{}, err
	}
	expr, err := rd.parse(tok)
	if err != nil {
		return Form{}, err
	}
	return Form{expr, tok.loc}, nil
}

type token struct {
	text string
	loc  fileinput.Location
}

func (rd *Reader) parse(tok token) (Expr, error) {
	switch tok.text {
	case "(":
		return rd.parseList(tok)
	case ")":
		return nil, &ParseError{Loc: tok.loc, Message: "unexpected ')'"}
	}
	return parseAtom(tok)
}

func (rd *Reader) parseList(open token) (Expr, error) {
	list := List{}
	for {
		tok, err := rd.next()
		if err == io.EOF {
			return nil, &ParseError{
				Loc:        open.loc,
				Message:    "unexpected end of input, expected ')'",
				Incomplete: true,
			}
		} else if err != nil {
			return nil, err
		}
		if tok.text == ")" {
			return list, nil
		}
		expr, err := rd.parse(tok)
		if err != nil {
			return nil, err
		}
		list = append(list, expr)
	}
}

func parseAtom(tok token) (Expr, error) {
	n, err := strconv.ParseInt(tok.text, 10, strconv.IntSize)
	if err == nil {
		return Number(n), nil
	}
	if errors.Is(err, strconv.ErrRange) {
		return nil, &ParseError{Loc: tok.loc, Message: fmt.Sprintf("integer %v out of range", tok.text)}
	}
	if isReserved(tok.text) || symbolPattern.MatchString(tok.text) {
		return Symbol(tok.text), nil
	}
	return nil, &ParseError{Loc: tok.loc, Message: fmt.Sprintf("invalid symbol %q", tok.text)}
}

func (rd *Reader) next() (token, error) {
	r, loc, err := rd.readRune()
	for err == nil && unicode.IsSpace(r) {
		r, loc, err = rd.readRune()
	}
	if err != nil {
		return token{}, err
	}

	switch {
	case r == '(' || r == ')':
		return token{string(r), loc}, nil
	case runeio.IsControl(r):
		return token{}, &ParseError{Loc: loc, Message: "unexpected control character " + runeio.Name(r)}
	}

	var sb strings.Builder
	sb.WriteRune(r)
	for last := loc; ; {
		r, rloc, err := rd.readRune()
		if err == io.EOF {
			break
		} else if err != nil {
			return token{}, err
		}
		if unicode.IsSpace(r) || r == '(' || r == ')' || runeio.IsControl(r) || !adjacent(last, rloc) {
			rd.unreadRune(r, rloc)
			break
		}
		sb.WriteRune(r)
		last = rloc
	}
	return token{sb.String(), loc}, nil
}

// adjacent reports whether next directly follows prev on the same line of
// the same stream; a token never spans into the next queued input.
func adjacent(prev, next fileinput.Location) bool {
	return next.Name == prev.Name && next.Line == prev.Line && next.Col == prev.Col+1
}

func (rd *Reader) readRune() (rune, fileinput.Location, error) {
	if rd.pending {
		rd.pending = false
		return rd.pendingR, rd.pendingLoc, nil
	}
	r, _, err := rd.in.ReadRune()
	if err == io.EOF {
		return 0, rd.in.Scan.Location, err
	} else if err != nil {
		return 0, rd.in.Scan.Location, errors.Wrapf(err, "reading %v", rd.in.Scan.Name)
	}
	return r, rd.in.Scan.Location, nil
}

func (rd *Reader) unreadRune(r rune, loc fileinput.Location) {
	rd.pending = true
	rd.pendingR = r
	rd.pendingLoc = loc
}
