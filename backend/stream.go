package backend

import (
	"bytes"
	"encoding/json"
	"strings"
)

// eventPrefix marks a framed record line in the /chat/stream response.
const eventPrefix = "data: "

// streamRecord is one decoded event from the chat stream.
// Content is a pointer so a record carrying an empty content field can be
// told apart from a record without one.
type streamRecord struct {
	Content *string `json:"content"`
	Error   string  `json:"error"`
	Done    bool    `json:"done"`
}

// Reassembler turns a chunked byte stream into ordered content fragments.
//
// The stream payload is line-framed: each record is a single line prefixed
// with "data: " carrying a JSON object, and a record may span multiple
// reads. Feed appends newly received bytes to a carry-over buffer, splits
// on newlines and processes every complete line; the trailing incomplete
// fragment is retained for the next Feed. Malformed or unprefixed lines
// are dropped silently, which is expected at stream boundaries.
type Reassembler struct {
	carry    []byte
	text     strings.Builder
	errText  string
	done     bool
	onUpdate func(fragment, accumulated string)
}

// NewReassembler creates a Reassembler. onUpdate is invoked for every
// applied content fragment, in receipt order, with the accumulated text so
// far. It may be nil.
func NewReassembler(onUpdate func(fragment, accumulated string)) *Reassembler {
	return &Reassembler{onUpdate: onUpdate}
}

// Feed consumes the next raw chunk from the stream.
func (r *Reassembler) Feed(p []byte) {
	r.carry = append(r.carry, p...)

	for {
		idx := bytes.IndexByte(r.carry, '\n')
		if idx < 0 {
			return
		}
		line := r.carry[:idx]
		r.carry = r.carry[idx+1:]
		r.processLine(line)
	}
}

func (r *Reassembler) processLine(line []byte) {
	line = bytes.TrimSuffix(line, []byte("\r"))
	if !bytes.HasPrefix(line, []byte(eventPrefix)) {
		return
	}

	var rec streamRecord
	if err := json.Unmarshal(line[len(eventPrefix):], &rec); err != nil {
		// Partial or malformed records are expected; drop them.
		return
	}

	switch {
	case rec.Error != "":
		r.errText = rec.Error
	case rec.Done:
		r.done = true
	case rec.Content != nil && r.errText == "":
		r.text.WriteString(*rec.Content)
		if r.onUpdate != nil {
			r.onUpdate(*rec.Content, r.text.String())
		}
	}
}

// Text returns the accumulated response text.
func (r *Reassembler) Text() string { return r.text.String() }

// Err returns the server-reported error, if any record carried one.
// Once set, later content fragments are no longer applied.
func (r *Reassembler) Err() string { return r.errText }

// Done reports whether the stream signalled normal completion.
// Residual carry-over bytes at end of stream are never parsed.
func (r *Reassembler) Done() bool { return r.done }
