package ai

import (
	"bufio"
	"bytes"
	"errors"
	"io"
)

// maxEventSize bounds a single SSE line.
const maxEventSize = 1 << 20

// sseReader splits a text/event-stream body into events.
type sseReader struct {
	scanner *bufio.Scanner
}

func newSSEReader(r io.Reader) *sseReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxEventSize)
	return &sseReader{scanner: scanner}
}

// next returns the event type and joined data lines of the next event.
// It returns io.EOF when the body ends.
func (s *sseReader) next() (string, []byte, error) {
	var event string
	var data [][]byte
	for s.scanner.Scan() {
		line := bytes.TrimRight(s.scanner.Bytes(), "\r")
		if len(line) == 0 {
			if len(data) > 0 {
				return event, bytes.Join(data, []byte("\n")), nil
			}
			event = ""
			continue
		}
		switch {
		case bytes.HasPrefix(line, []byte(":")):
		case bytes.HasPrefix(line, []byte("event:")):
			event = string(bytes.TrimSpace(line[len("event:"):]))
		case bytes.HasPrefix(line, []byte("data:")):
			value := line[len("data:"):]
			if len(value) > 0 && value[0] == ' ' {
				value = value[1:]
			}
			data = append(data, append([]byte(nil), value...))
		}
	}
	if err := s.scanner.Err(); err != nil {
		return "", nil, err
	}
	if len(data) > 0 {
		return event, bytes.Join(data, []byte("\n")), nil
	}
	return "", nil, io.EOF
}

var errStreamDone = errors.New("stream done")
