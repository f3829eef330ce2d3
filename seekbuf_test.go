package tmx

import (
	"errors"
	"io"
)

// seekBuf is a minimal in-memory io.ReadWriteSeeker backing store for
// tests: Parse/Serialize require a seekable stream and bytes.Buffer
// alone does not implement Seek.
type seekBuf struct {
	data []byte
	pos  int64
}

func (b *seekBuf) Write(p []byte) (int, error) {
	end := b.pos + int64(len(p))
	if end > int64(len(b.data)) {
		grown := make([]byte, end)
		copy(grown, b.data)
		b.data = grown
	}
	copy(b.data[b.pos:end], p)
	b.pos = end
	return len(p), nil
}

func (b *seekBuf) Read(p []byte) (int, error) {
	if b.pos >= int64(len(b.data)) {
		return 0, io.EOF
	}
	n := copy(p, b.data[b.pos:])
	b.pos += int64(n)
	return n, nil
}

func (b *seekBuf) Seek(offset int64, whence int) (int64, error) {
	var newPos int64
	switch whence {
	case io.SeekStart:
		newPos = offset
	case io.SeekCurrent:
		newPos = b.pos + offset
	case io.SeekEnd:
		newPos = int64(len(b.data)) + offset
	default:
		return 0, errors.New("seekBuf: invalid whence")
	}
	if newPos < 0 {
		return 0, errors.New("seekBuf: negative position")
	}
	b.pos = newPos
	return newPos, nil
}
