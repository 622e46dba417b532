package wirecap

import (
	"bytes"
	"fmt"
	"io"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

// OP_COMPRESSED compressor ids.
const (
	compressorNoop   = 0
	compressorSnappy = 1
	compressorZlib   = 2
	compressorZstd   = 3
)

func decompress(compressorID uint8, data []byte, uncompressedSize int) ([]byte, error) {
	if uncompressedSize < 0 || uncompressedSize > maxFrameSize {
		return nil, ErrFrameTooLarge
	}

	switch compressorID {
	case compressorNoop:
		return data, nil
	case compressorSnappy:
		return snappy.Decode(nil, data)
	case compressorZlib:
		r, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(io.LimitReader(r, int64(uncompressedSize)))
	case compressorZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return dec.DecodeAll(data, nil)
	}
	return nil, fmt.Errorf("wirecap: unknown compressor id %d", compressorID)
}
