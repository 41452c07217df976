package webnet

import (
	"errors"
	"io"
	"time"

	"github.com/valyala/bytebufferpool"
)

const (
	smallChunk = 8 << 10
	largeChunk = 256 << 10
)

// chunkSize picks the read size for a body of the declared length. Unknown
// lengths (-1) use the small chunk.
func chunkSize(contentLength int64) int {
	if contentLength >= largeChunk {
		return largeChunk
	}
	return smallChunk
}

// readBody accumulates r into a pooled buffer, chunk bytes at a time.
func readBody(r io.Reader, chunk int) (string, error) {
	bb := bytebufferpool.Get()
	defer bytebufferpool.Put(bb)

	buf := make([]byte, chunk)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			bb.Write(buf[:n])
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
	}
	return bb.String(), nil
}

// idleReader re-arms timer before every read so that a stalled transfer
// trips it while a slow but steady one does not.
type idleReader struct {
	r       io.Reader
	timer   *time.Timer
	timeout time.Duration
}

func (ir *idleReader) Read(p []byte) (int, error) {
	ir.timer.Reset(ir.timeout)
	return ir.r.Read(p)
}
