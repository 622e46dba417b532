// Package wirecap passively captures MongoDB wire traffic and feeds the
// documents it observes (inserts and cursor batches) into the same merge
// engine the cursor-based scan uses.
package wirecap

import (
	"encoding/binary"
	"errors"
)

// Wire protocol maxMessageSizeBytes. Anything larger is a framing error.
const maxFrameSize = 48_000_000

const headerSize = 16

var (
	ErrFrameTooLarge = errors.New("wirecap: frame exceeds wire protocol maximum")
	errBadFrame      = errors.New("wirecap: frame shorter than a message header")
)

// frameBuffer accumulates one TCP direction's byte stream and slices it into
// complete wire messages. The length prefix counts the header itself.
type frameBuffer struct {
	buf []byte
}

func (b *frameBuffer) feed(p []byte) {
	b.buf = append(b.buf, p...)
}

// next returns the next complete frame, nil when more bytes are needed, or an
// error when the stream has desynchronized. On error the buffer is dropped;
// the stream resynchronizes on whatever the next segment starts with.
func (b *frameBuffer) next() ([]byte, error) {
	if len(b.buf) < 4 {
		return nil, nil
	}

	n := int(binary.LittleEndian.Uint32(b.buf))
	if n < headerSize {
		b.buf = nil
		return nil, errBadFrame
	}
	if n > maxFrameSize {
		b.buf = nil
		return nil, ErrFrameTooLarge
	}
	if len(b.buf) < n {
		return nil, nil
	}

	frame := b.buf[:n]
	b.buf = b.buf[n:]
	return frame, nil
}
