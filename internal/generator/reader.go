// Package generator replays an archived diagnostic file chunk-by-chunk
// over a transport producer, pacing emission to mimic the instrument's
// original acquisition rate.
package generator

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

// Reader loads one (channels x chunkSize) block at a time from a raw
// archive file: channel-major, samples contiguous per channel,
// little-endian float64, with no header. This stands in for the
// multi-channel HDF-like archive format the real instrument writes,
// which has no idiomatic Go reader anywhere in the retrieved corpus.
type Reader struct {
	f          *os.File
	channels   int
	chunkSize  int
	numChunks  int
	nextChunk  int
	blockBytes int64
}

// OpenReader opens path and prepares to read channels rows of chunkSize
// samples each, numChunks times.
func OpenReader(path string, channels, chunkSize, numChunks int) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening source file %q: %w", path, err)
	}
	return &Reader{
		f:          f,
		channels:   channels,
		chunkSize:  chunkSize,
		numChunks:  numChunks,
		blockBytes: int64(channels*chunkSize) * 8,
	}, nil
}

// NumChunks returns the configured total chunk count.
func (r *Reader) NumChunks() int {
	return r.numChunks
}

// Next reads the next (channels x chunkSize) block in channel-major
// order, returning io.EOF once numChunks blocks have been read.
func (r *Reader) Next() ([]float64, error) {
	if r.nextChunk >= r.numChunks {
		return nil, io.EOF
	}

	offset := int64(r.nextChunk) * r.blockBytes
	buf := make([]byte, r.blockBytes)
	if _, err := r.f.ReadAt(buf, offset); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("reading chunk %d: %w", r.nextChunk, err)
	}

	out := make([]float64, r.channels*r.chunkSize)
	for i := range out {
		bits := binary.LittleEndian.Uint64(buf[i*8 : i*8+8])
		out[i] = math.Float64frombits(bits)
	}

	r.nextChunk++
	return out, nil
}

// Close releases the underlying file handle.
func (r *Reader) Close() error {
	return r.f.Close()
}
