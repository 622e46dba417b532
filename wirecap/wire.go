package wirecap

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

const (
	opReply      = 1
	opCompressed = 2012
	opMsg        = 2013
)

// message is the part of a parsed wire message the document extractor cares
// about: the command or reply body plus any kind-1 document sequences.
type message struct {
	op        int32
	body      bson.M
	sequences map[string][]bson.M
}

// parseFrame decodes one complete wire frame. Opcodes that cannot carry
// documents parse to (nil, nil) and are skipped.
func parseFrame(frame []byte) (*message, error) {
	if len(frame) < headerSize {
		return nil, errBadFrame
	}

	op := int32(binary.LittleEndian.Uint32(frame[12:]))
	payload := frame[headerSize:]

	switch op {
	case opCompressed:
		return parseCompressed(payload)
	case opMsg:
		return parseMsg(payload)
	case opReply:
		return parseReply(payload)
	}
	return nil, nil
}

// parseCompressed unwraps OP_COMPRESSED and re-dispatches on the original
// opcode. The wrapped payload excludes the header.
func parseCompressed(payload []byte) (*message, error) {
	if len(payload) < 9 {
		return nil, fmt.Errorf("wirecap: short OP_COMPRESSED payload (%d bytes)", len(payload))
	}

	originalOp := int32(binary.LittleEndian.Uint32(payload))
	size := int(binary.LittleEndian.Uint32(payload[4:]))
	compressorID := payload[8]

	inner, err := decompress(compressorID, payload[9:], size)
	if err != nil {
		return nil, err
	}

	switch originalOp {
	case opMsg:
		return parseMsg(inner)
	case opReply:
		return parseReply(inner)
	}
	return nil, nil
}

func parseMsg(payload []byte) (*message, error) {
	if len(payload) < 4 {
		return nil, fmt.Errorf("wirecap: short OP_MSG payload (%d bytes)", len(payload))
	}

	flags := binary.LittleEndian.Uint32(payload)
	if flags&1 != 0 {
		// checksumPresent: trailing CRC-32C
		if len(payload) < 8 {
			return nil, fmt.Errorf("wirecap: OP_MSG shorter than its checksum")
		}
		payload = payload[:len(payload)-4]
	}

	m := &message{op: opMsg}
	pos := 4
	for pos < len(payload) {
		kind := payload[pos]
		pos++

		switch kind {
		case 0:
			doc, n, err := readDocument(payload[pos:])
			if err != nil {
				return nil, err
			}
			if m.body == nil {
				m.body = doc
			}
			pos += n
		case 1:
			n, err := m.readSequence(payload[pos:])
			if err != nil {
				return nil, err
			}
			pos += n
		default:
			return nil, fmt.Errorf("wirecap: unknown OP_MSG section kind %d", kind)
		}
	}
	return m, nil
}

// readSequence parses a kind-1 section: int32 size, cstring identifier, then
// documents back to back until the section ends.
func (m *message) readSequence(payload []byte) (int, error) {
	if len(payload) < 4 {
		return 0, fmt.Errorf("wirecap: short OP_MSG sequence section")
	}
	size := int(binary.LittleEndian.Uint32(payload))
	if size < 4 || size > len(payload) {
		return 0, fmt.Errorf("wirecap: OP_MSG sequence size %d out of range", size)
	}

	section := payload[4:size]
	nul := bytes.IndexByte(section, 0)
	if nul < 0 {
		return 0, fmt.Errorf("wirecap: unterminated sequence identifier")
	}
	ident := string(section[:nul])
	rest := section[nul+1:]

	for len(rest) > 0 {
		doc, n, err := readDocument(rest)
		if err != nil {
			return 0, err
		}
		if m.sequences == nil {
			m.sequences = make(map[string][]bson.M)
		}
		m.sequences[ident] = append(m.sequences[ident], doc)
		rest = rest[n:]
	}
	return size, nil
}

// parseReply handles the legacy OP_REPLY layout: response flags, cursor id,
// starting-from, number returned, then the documents. The first document of a
// command reply is the body the extractor reads the cursor from.
func parseReply(payload []byte) (*message, error) {
	if len(payload) < 20 {
		return nil, fmt.Errorf("wirecap: short OP_REPLY payload (%d bytes)", len(payload))
	}

	m := &message{op: opReply}
	rest := payload[20:]
	for len(rest) > 0 {
		doc, n, err := readDocument(rest)
		if err != nil {
			return nil, err
		}
		if m.body == nil {
			m.body = doc
		} else {
			if m.sequences == nil {
				m.sequences = make(map[string][]bson.M)
			}
			m.sequences["documents"] = append(m.sequences["documents"], doc)
		}
		rest = rest[n:]
	}
	return m, nil
}

func readDocument(payload []byte) (bson.M, int, error) {
	if len(payload) < 5 {
		return nil, 0, fmt.Errorf("wirecap: short BSON document (%d bytes)", len(payload))
	}
	n := int(binary.LittleEndian.Uint32(payload))
	if n < 5 || n > len(payload) {
		return nil, 0, fmt.Errorf("wirecap: BSON length %d out of range", n)
	}

	var doc bson.M
	if err := bson.Unmarshal(payload[:n], &doc); err != nil {
		return nil, 0, fmt.Errorf("wirecap: unmarshal document: %w", err)
	}
	return doc, n, nil
}
