package argresolve

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var (
	// ErrUnclosedQuote is returned when a quoted section never closes.
	ErrUnclosedQuote = errors.New("unclosed quote in command line")

	// ErrTrailingEscape is returned when the input ends with a backslash.
	ErrTrailingEscape = errors.New("trailing escape character in command line")
)

type splitState int

const (
	stateBare splitState = iota
	stateSingle
	stateDouble
)

// splitter accumulates words while walking a command line.
type splitter struct {
	words   []string
	word    strings.Builder
	pending bool // a word is open, possibly empty ("")
}

func (s *splitter) flush() {
	if s.pending {
		s.words = append(s.words, s.word.String())
		s.word.Reset()
		s.pending = false
	}
}

func (s *splitter) add(r rune) {
	s.word.WriteRune(r)
	s.pending = true
}

// Split breaks a command line into tokens the way a POSIX shell would:
// whitespace separates words, single quotes are literal, double quotes allow
// \" \\ \$ and \` escapes, and a backslash outside quotes escapes any rune.
//
//	Split(`-executeMethod Build.Run "-name=idle neutral"`)
//	  => ["-executeMethod", "Build.Run", "-name=idle neutral"]
func Split(commandLine string) ([]string, error) {
	s := &splitter{}
	state := stateBare
	runes := []rune(commandLine)

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch state {
		case stateSingle:
			if r == '\'' {
				state = stateBare
				continue
			}
			s.add(r)

		case stateDouble:
			switch r {
			case '"':
				state = stateBare
			case '\\':
				if i+1 >= len(runes) {
					return nil, ErrTrailingEscape
				}
				i++
				switch next := runes[i]; next {
				case '"', '\\', '$', '`':
					s.add(next)
				default:
					s.add('\\')
					s.add(next)
				}
			default:
				s.add(r)
			}

		default:
			switch {
			case r == '\'':
				state = stateSingle
				s.pending = true
			case r == '"':
				state = stateDouble
				s.pending = true
			case r == '\\':
				if i+1 >= len(runes) {
					return nil, ErrTrailingEscape
				}
				i++
				s.add(runes[i])
			case unicode.IsSpace(r):
				s.flush()
			default:
				s.add(r)
			}
		}
	}

	switch state {
	case stateSingle:
		return nil, fmt.Errorf("%w: single quote", ErrUnclosedQuote)
	case stateDouble:
		return nil, fmt.Errorf("%w: double quote", ErrUnclosedQuote)
	}

	s.flush()
	if s.words == nil {
		return []string{}, nil
	}
	return s.words, nil
}
