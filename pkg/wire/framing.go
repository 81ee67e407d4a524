package wire

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// headerSize is the fixed width of the ASCII length header both peers use.
const headerSize = 20

// EncodeFrame wraps command text in the engine's framing: a space-padded
// decimal length header counting the text plus the trailing NUL.
func EncodeFrame(command string) ([]byte, error) {
	if !strings.HasSuffix(command, ";") && !strings.HasSuffix(command, "\n") {
		command += ";"
	}
	lenStr := strconv.Itoa(len(command) + 1)
	if len(lenStr) > headerSize {
		return nil, fmt.Errorf("command length %d does not fit the header", len(command))
	}
	buf := make([]byte, 0, headerSize+len(command)+1)
	buf = append(buf, lenStr...)
	buf = append(buf, bytes.Repeat([]byte{' '}, headerSize-len(lenStr))...)
	buf = append(buf, command...)
	buf = append(buf, 0)
	return buf, nil
}

// ReadFrame reads one length-prefixed reply: a header of headerSize bytes
// carrying the ASCII decimal payload length, then exactly that many bytes.
func ReadFrame(r io.Reader) ([]byte, error) {
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}
	end := bytes.IndexByte(header, 0)
	if end < 0 {
		end = headerSize
	}
	lenStr := strings.TrimSpace(string(header[:end]))
	n, err := strconv.Atoi(lenStr)
	if err != nil {
		return nil, fmt.Errorf("malformed length header %q: %w", lenStr, err)
	}
	if n < 0 {
		return nil, fmt.Errorf("negative payload length %d", n)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return payload, nil
}
