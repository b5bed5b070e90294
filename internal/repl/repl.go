package repl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"

	"crowbar/internal/evaluator"
	"crowbar/internal/lexer"
	"crowbar/internal/token"
)

const (
	PROMPT      = ">> "
	PROMPT_CONT = ".. "
)

// Session feeds successive inputs to one interpreter, so functions and
// globals defined by earlier inputs stay visible.
type Session struct {
	interp *evaluator.Interpreter
	out    io.Writer
}

func NewSession(interp *evaluator.Interpreter, out io.Writer) *Session {
	return &Session{interp: interp, out: out}
}

// Eval compiles and runs one input. Errors are reported to the session
// output; the session stays usable.
func (s *Session) Eval(src string) error {
	if _, err := s.interp.Compile(src); err != nil {
		printErrors(s.out, err)
		return err
	}
	if err := s.interp.Run(); err != nil {
		printErrors(s.out, err)
		return err
	}
	return nil
}

// Complete reports whether every bracket opened in src has been closed, so
// the input can be compiled.
func Complete(src string) bool {
	depth := 0
	for _, tok := range lexer.New(src).Tokens() {
		switch tok.Type {
		case token.LBRACE, token.LPAREN, token.LBRACKET:
			depth++
		case token.RBRACE, token.RPAREN, token.RBRACKET:
			depth--
		}
	}
	return depth <= 0
}

// Start runs the interactive loop until Ctrl-D. History is read from and
// written back to historyPath when it is set.
func Start(s *Session, historyPath string) {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}

	for {
		src, ok := readInput(ln)
		if !ok {
			fmt.Fprintln(s.out)
			break
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		_ = s.Eval(src)
	}

	if historyPath != "" {
		if f, err := os.Create(historyPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}
}

// readInput reads lines until the brackets balance. It returns false on
// end of input.
func readInput(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := PROMPT
		if b.Len() > 0 {
			prompt = PROMPT_CONT
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// Ctrl-C drops the pending input
			return "", true
		}
		b.WriteString(line)
		b.WriteByte('\n')
		if Complete(b.String()) {
			return b.String(), true
		}
	}
}

func printErrors(out io.Writer, err error) {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			io.WriteString(out, "\t"+e.Error()+"\n")
		}
		return
	}
	io.WriteString(out, "\t"+err.Error()+"\n")
}
