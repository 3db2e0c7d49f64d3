package poseformat

import (
	"bufio"
	"io"
	"strings"
)

// MaxLineBytes bounds a single record line.
const MaxLineBytes = 16 * 1024 * 1024

// Scanner yields the non-blank lines of a .pose stream.
type Scanner struct {
	s    *bufio.Scanner
	line int
	text string
}

func NewScanner(r io.Reader) *Scanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), MaxLineBytes)
	return &Scanner{s: s}
}

// Scan advances to the next non-blank line. A line cut short by a read
// error is not returned; Err reports the failure instead.
func (s *Scanner) Scan() bool {
	for s.s.Scan() {
		if s.s.Err() != nil {
			return false
		}
		s.line++
		if text := s.s.Text(); strings.TrimSpace(text) != "" {
			s.text = text
			return true
		}
	}
	return false
}

func (s *Scanner) Text() string { return s.text }

// Line returns the 1-based line number of the current record.
func (s *Scanner) Line() int { return s.line }

func (s *Scanner) Err() error { return s.s.Err() }
