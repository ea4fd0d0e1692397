package helpers

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/doeshing/kidchat/internal/ports"
)

// Console reads lines and passwords from one input. Lines and piped passwords
// share a buffered reader so neither swallows the other's input.
type Console struct {
	file *os.File
	in   *bufio.Reader
	out  io.Writer
}

// NewConsole wraps in and out. Passwords are read without echo when in is a terminal.
func NewConsole(in io.Reader, out io.Writer) *Console {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	file, _ := in.(*os.File)
	return &Console{file: file, in: bufio.NewReader(in), out: out}
}

// Out returns the output writer.
func (c *Console) Out() io.Writer {
	return c.out
}

// ReadLine prints prompt and returns the next line without its newline.
// io.EOF is returned only when nothing was read.
func (c *Console) ReadLine(prompt string) (string, error) {
	if prompt != "" {
		fmt.Fprint(c.out, prompt)
	}
	line, err := c.in.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ReadPassword implements ports.PasswordPrompter.
func (c *Console) ReadPassword(prompt string) (string, error) {
	if c.file != nil && term.IsTerminal(int(c.file.Fd())) {
		fmt.Fprint(c.out, prompt)
		raw, err := term.ReadPassword(int(c.file.Fd()))
		fmt.Fprintln(c.out)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
	return c.ReadLine(prompt)
}

// ReadNewPassword asks for a password twice and requires both to match.
func (c *Console) ReadNewPassword(prompt string) (string, error) {
	first, err := c.ReadPassword(prompt)
	if err != nil {
		return "", err
	}
	second, err := c.ReadPassword("Confirm password: ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", fmt.Errorf("passwords do not match")
	}
	return first, nil
}

var _ ports.PasswordPrompter = (*Console)(nil)
