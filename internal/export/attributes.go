package export

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/san-kum/dissolve/internal/particles"
)

// Attribute buffers are written little-endian:
//
//	magic "DSLV", version uint32, attribute count uint32
//	per attribute: name length uint16, name, item size uint32,
//	item count uint32, count*itemSize float32 values
const (
	attrMagic   = "DSLV"
	attrVersion = 1
)

var ErrBadAttributes = errors.New("malformed attribute buffer")

// WriteAttributes dumps the vertex attribute views of a particle set in the
// layout a GPU upload expects.
func WriteAttributes(w io.Writer, attrs []particles.Attribute) error {
	for _, a := range attrs {
		if a.ItemSize <= 0 || len(a.Data)%a.ItemSize != 0 {
			return fmt.Errorf("attribute %s: %d values for item size %d: %w", a.Name, len(a.Data), a.ItemSize, ErrBadAttributes)
		}
	}

	bw := bufio.NewWriter(w)
	bw.WriteString(attrMagic)
	binary.Write(bw, binary.LittleEndian, uint32(attrVersion))
	binary.Write(bw, binary.LittleEndian, uint32(len(attrs)))

	for _, a := range attrs {
		binary.Write(bw, binary.LittleEndian, uint16(len(a.Name)))
		bw.WriteString(a.Name)
		binary.Write(bw, binary.LittleEndian, uint32(a.ItemSize))
		binary.Write(bw, binary.LittleEndian, uint32(a.Count()))

		var buf [4]byte
		for _, v := range a.Data {
			binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
			bw.Write(buf[:])
		}
	}

	return bw.Flush()
}

// Limits applied while reading so a corrupt header cannot drive allocation.
const (
	maxAttributes = 64
	maxItemSize   = 16
	maxValues     = 1 << 28
	readChunk     = 1 << 14
)

// ReadAttributes parses a buffer written by WriteAttributes. Truncated or
// out-of-range input yields an error wrapping ErrBadAttributes.
func ReadAttributes(r io.Reader) ([]particles.Attribute, error) {
	br := bufio.NewReader(r)

	magic := make([]byte, len(attrMagic))
	if _, err := io.ReadFull(br, magic); err != nil {
		return nil, truncated("magic", err)
	}
	if string(magic) != attrMagic {
		return nil, fmt.Errorf("magic %q: %w", magic, ErrBadAttributes)
	}

	var version, n uint32
	if err := binary.Read(br, binary.LittleEndian, &version); err != nil {
		return nil, truncated("version", err)
	}
	if version != attrVersion {
		return nil, fmt.Errorf("version %d: %w", version, ErrBadAttributes)
	}
	if err := binary.Read(br, binary.LittleEndian, &n); err != nil {
		return nil, truncated("header", err)
	}
	if n > maxAttributes {
		return nil, fmt.Errorf("%d attributes: %w", n, ErrBadAttributes)
	}

	attrs := make([]particles.Attribute, 0, n)
	for i := uint32(0); i < n; i++ {
		var nameLen uint16
		if err := binary.Read(br, binary.LittleEndian, &nameLen); err != nil {
			return nil, truncated("attribute name", err)
		}
		name := make([]byte, nameLen)
		if _, err := io.ReadFull(br, name); err != nil {
			return nil, truncated("attribute name", err)
		}

		var itemSize, count uint32
		if err := binary.Read(br, binary.LittleEndian, &itemSize); err != nil {
			return nil, truncated("attribute "+string(name), err)
		}
		if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
			return nil, truncated("attribute "+string(name), err)
		}
		if itemSize == 0 || itemSize > maxItemSize {
			return nil, fmt.Errorf("attribute %s: item size %d: %w", name, itemSize, ErrBadAttributes)
		}
		total := uint64(itemSize) * uint64(count)
		if total > maxValues {
			return nil, fmt.Errorf("attribute %s: %d values: %w", name, total, ErrBadAttributes)
		}

		data, err := readFloats(br, int(total))
		if err != nil {
			return nil, truncated("attribute "+string(name), err)
		}
		attrs = append(attrs, particles.Attribute{Name: string(name), ItemSize: int(itemSize), Data: data})
	}

	return attrs, nil
}

// readFloats grows the result as data arrives rather than trusting the
// declared length up front.
func readFloats(r io.Reader, total int) ([]float32, error) {
	data := make([]float32, 0, min(total, readChunk))
	buf := make([]byte, 4*readChunk)
	for len(data) < total {
		k := min(total-len(data), readChunk)
		if _, err := io.ReadFull(r, buf[:4*k]); err != nil {
			return nil, err
		}
		for j := 0; j < k; j++ {
			data = append(data, math.Float32frombits(binary.LittleEndian.Uint32(buf[4*j:])))
		}
	}
	return data, nil
}

func truncated(what string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%s: %w: %w", what, ErrBadAttributes, err)
	}
	return fmt.Errorf("%s: %w", what, err)
}
