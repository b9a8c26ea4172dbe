package mdec

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

var (
	// BufferSize is the default size for buffer.
	BufferSize = 128 * 1024
)

// stuffing is the code word used as padding before a block and as the end-of-block marker.
const stuffing = 0xFE00

// LoadFunc callback function.
type LoadFunc func(buffer *Buffer)

// Buffer provides the code words for the Decoder.
// It holds a cursor over the words and an exclusive upper bound, the number of whole words
// written so far. Only the decoder moves the cursor, one word at a time.
type Buffer struct {
	reader io.Reader
	bytes  []byte
	order  binary.ByteOrder

	start     int64
	wordIndex int
	discarded int

	hasEnded    bool
	discardRead bool

	available    []byte
	loadCallback LoadFunc
}

// NewBuffer creates a buffer instance. If r is nil the buffer is fed with Write().
func NewBuffer(r io.Reader) (*Buffer, error) {
	buf := &Buffer{}

	if seeker, ok := r.(io.Seeker); ok {
		cur, err := seeker.Seek(0, io.SeekCurrent)
		if err != nil {
			return nil, errors.Wrap(err, "seek")
		}
		buf.start = cur
	}

	buf.reader = r
	buf.order = binary.LittleEndian
	buf.bytes = make([]byte, 0, BufferSize)
	buf.available = make([]byte, BufferSize)

	buf.discardRead = true

	return buf, nil
}

// SetByteOrder sets how pairs of bytes map to code words.
func (b *Buffer) SetByteOrder(order binary.ByteOrder) {
	b.order = order
}

// ByteOrder returns the byte order of code words.
func (b *Buffer) ByteOrder() binary.ByteOrder {
	return b.order
}

// Bytes returns a slice holding the unread portion of the buffer.
func (b *Buffer) Bytes() []byte {
	return b.bytes[b.wordIndex<<1:]
}

// Index returns the absolute word index of the cursor.
func (b *Buffer) Index() int {
	return b.discarded + b.wordIndex
}

// Write appends the contents of p to the buffer.
func (b *Buffer) Write(p []byte) int {
	if b.discardRead {
		b.discardReadWords()
	}

	b.bytes = append(b.bytes, p...)

	b.hasEnded = false

	return len(p)
}

// SignalEnd signals that no more data is expected to be written to the buffer.
// This function should be called just after the last Write().
func (b *Buffer) SignalEnd() {
	b.hasEnded = true
}

// SetLoadCallback sets a callback that is called whenever the buffer needs more data.
func (b *Buffer) SetLoadCallback(callback LoadFunc) {
	b.loadCallback = callback
}

// Rewind the buffer back to the beginning. When loading from io.ReadSeeker,
// this also seeks to the position the reader had in NewBuffer().
func (b *Buffer) Rewind() {
	b.seek(0)
}

// Size returns the absolute number of whole words known so far, the exclusive upper bound of the cursor.
func (b *Buffer) Size() int {
	return b.discarded + b.words()
}

// Remaining returns the number of remaining (yet unread) words in the buffer.
func (b *Buffer) Remaining() int {
	return b.words() - b.wordIndex
}

// HasEnded checks whether the read position of the buffer is at the end and no more data is expected.
func (b *Buffer) HasEnded() bool {
	return b.hasEnded && b.Remaining() == 0
}

// LoadReaderCallback is a callback that is called whenever the buffer needs more data.
func (b *Buffer) LoadReaderCallback(buffer *Buffer) {
	if b.hasEnded || b.reader == nil {
		return
	}

	p := b.available

	n, err := io.ReadFull(b.reader, p)
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			p = p[:n]
		} else {
			b.hasEnded = true

			return
		}
	}

	if n == 0 {
		b.hasEnded = true

		return
	}

	b.Write(p)
}

func (b *Buffer) words() int {
	return len(b.bytes) >> 1
}

func (b *Buffer) seek(pos int) {
	if seeker, ok := b.reader.(io.Seeker); ok {
		_, _ = seeker.Seek(b.start+int64(pos)<<1, io.SeekStart)
		b.bytes = b.bytes[:0]

		b.wordIndex = 0
		b.discarded = 0
		b.hasEnded = false
	} else if b.reader == nil {
		// Words already discarded by Write are gone
		if b.discarded != 0 {
			return
		}

		b.wordIndex = 0
	}
}

func (b *Buffer) discardReadWords() {
	bytePos := b.wordIndex << 1
	if bytePos == len(b.bytes) {
		b.bytes = b.bytes[:0]
	} else if bytePos > 0 {
		copy(b.bytes, b.bytes[bytePos:])
		b.bytes = b.bytes[:len(b.bytes)-bytePos]
	}

	b.discarded += b.wordIndex
	b.wordIndex = 0
}

// has reports whether at least count more words are available, loading more data if needed.
func (b *Buffer) has(count int) bool {
	if b.Remaining() >= count {
		return true
	}

	for b.loadCallback != nil && !b.hasEnded {
		size := len(b.bytes) + b.discarded<<1
		b.loadCallback(b)

		if b.Remaining() >= count {
			return true
		}
		if len(b.bytes)+b.discarded<<1 == size {
			break
		}
	}

	return false
}

// next returns the word at the cursor and advances it.
// At the end of the stream it returns ErrEndOfStream and the cursor does not move.
func (b *Buffer) next() (uint16, error) {
	if !b.has(1) {
		return 0, ErrEndOfStream
	}

	i := b.wordIndex << 1
	value := b.order.Uint16(b.bytes[i : i+2])
	b.wordIndex++

	return value, nil
}
