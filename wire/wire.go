// Package wire implements the line-terminated text protocol spoken between
// the verification client and the authority. Every unit on the wire is one
// newline-terminated line: a proof request is "<label>:<item>", a proof
// stream is zero or more digest lines followed by the terminator line.
package wire

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
)

const (
	// EndSessionMsg in the item field of a request tells the authority to
	// close the connection without sending anything back.
	EndSessionMsg = "exit"
	// EndTransmissionMsg terminates one item's proof stream. Digests are
	// fixed-width hex strings, so the literal can never collide with one.
	EndTransmissionMsg = "done"

	unitDelim = '\n'
	cutset    = "\x00 \t\r"
)

// Request is one decoded proof request. Label is free-form human-readable
// text; Item identifies the element whose membership is being checked.
type Request struct {
	Label string
	Item  string
}

// EndSession reports whether this request asks the authority to close the
// connection.
func (r Request) EndSession() bool {
	return r.Item == EndSessionMsg
}

// EncodeRequest frames a proof request as a single unit.
func EncodeRequest(label, item string) []byte {
	return []byte(label + ":" + item + string(unitDelim))
}

// ParseRequest decodes one request unit. The bare session-end marker is
// accepted with or without a label. A unit with no delimiter or an empty
// item field is a protocol error.
func ParseRequest(unit string) (Request, error) {
	if unit == EndSessionMsg {
		return Request{Item: EndSessionMsg}, nil
	}
	label, item, found := strings.Cut(unit, ":")
	if !found {
		return Request{}, fmt.Errorf("request %q: missing ':' delimiter", unit)
	}
	item = strings.Trim(item, cutset)
	if item == "" {
		return Request{}, fmt.Errorf("request %q: empty item field", unit)
	}
	return Request{Label: strings.TrimSpace(label), Item: item}, nil
}

// NextUnit extracts the first complete unit from buf. It returns ok=false
// when no full unit has arrived yet, so callers accumulating bytes from
// short reads keep the remainder and retry later. The unit is stripped of
// NUL padding and surrounding whitespace; a blank unit comes back as the
// empty string and is not a value.
func NextUnit(buf []byte) (unit string, rest []byte, ok bool) {
	i := bytes.IndexByte(buf, unitDelim)
	if i < 0 {
		return "", buf, false
	}
	return strings.Trim(string(buf[:i]), cutset), buf[i+1:], true
}

// WriteUnit sends one unit as its own write so it is flushed independently
// of any units that follow.
func WriteUnit(w io.Writer, unit string) error {
	_, err := w.Write(append([]byte(unit), unitDelim))
	return err
}

// WriteProofStream sends every digest as its own unit, then the terminator.
func WriteProofStream(w io.Writer, nodes []string) error {
	for _, node := range nodes {
		if err := WriteUnit(w, node); err != nil {
			return fmt.Errorf("send node %s: %w", node, err)
		}
	}
	if err := WriteUnit(w, EndTransmissionMsg); err != nil {
		return fmt.Errorf("send terminator: %w", err)
	}
	return nil
}

// ReadProofStream collects digest units until the terminator arrives. Blank
// units are skipped. On a read error the nodes received so far are returned
// along with the error; callers decide what a truncated proof means.
func ReadProofStream(br *bufio.Reader) ([]string, error) {
	var nodes []string
	for {
		line, err := br.ReadString(unitDelim)
		unit := strings.Trim(line, cutset+string(unitDelim))
		if err != nil {
			return nodes, err
		}
		if unit == "" {
			continue
		}
		if unit == EndTransmissionMsg {
			return nodes, nil
		}
		nodes = append(nodes, unit)
	}
}
