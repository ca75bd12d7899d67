// sndh_ice.go - Pack-Ice 2.x depacker for compressed SNDH files
//
// The packed stream is read backwards from its end and the output is
// filled backwards from its end, mixing literal runs and back-references.

package stsound

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	ICE_MAGIC       = 0x49434521 // "ICE!"
	ICE_HEADER_SIZE = 12
)

var ErrICECorrupt = errors.New("corrupt ICE! data")

// Variable-length field tables of the ICE bit stream
var (
	iceMatchLenBits  = [5]int{0, 0, 1, 2, 10}
	iceMatchLenBase  = [5]int{2, 3, 4, 6, 10}
	iceOffsetBits    = [3]int{8, 5, 12}
	iceOffsetBase    = [3]int{31, -1, 287}
	iceLiteralBits   = [6]int{1, 2, 2, 3, 8, 15}
	iceLiteralAllSet = [6]int{1, 3, 3, 7, 0xFF, 0x7FFF}
	iceLiteralBase   = [7]int{1, 2, 5, 8, 15, 270, 270}
)

type iceDecoder struct {
	in   []byte
	out  []byte
	src  int // read position, moves towards the header
	dst  int // write position, moves towards zero
	bits int // shift register; a lone marker bit means "refill"
}

func isICE(data []byte) bool {
	return len(data) >= ICE_HEADER_SIZE && binary.BigEndian.Uint32(data) == ICE_MAGIC
}

// UnpackICE returns the depacked contents of an ICE! image.
func UnpackICE(data []byte) ([]byte, error) {
	if !isICE(data) {
		return nil, fmt.Errorf("%w: missing ICE! header", ErrICECorrupt)
	}
	packedLen := int(binary.BigEndian.Uint32(data[4:]))
	unpackedLen := int(binary.BigEndian.Uint32(data[8:]))
	if packedLen <= ICE_HEADER_SIZE || unpackedLen <= 0 || unpackedLen > ST_RAM_SIZE {
		return nil, fmt.Errorf("%w: packed=%d unpacked=%d", ErrICECorrupt, packedLen, unpackedLen)
	}
	if packedLen > len(data) {
		return nil, fmt.Errorf("%w: truncated, have %d of %d bytes", ErrICECorrupt, len(data), packedLen)
	}

	d := &iceDecoder{
		in:  data,
		out: make([]byte, unpackedLen),
		src: packedLen - 1,
		dst: unpackedLen,
	}
	d.bits = int(data[d.src])
	if err := d.run(); err != nil {
		return nil, err
	}
	return d.out, nil
}

func (d *iceDecoder) bit() int {
	b := (d.bits >> 7) & 1
	d.bits = (d.bits << 1) & 0xFF
	if d.bits != 0 {
		return b
	}
	d.src--
	if d.src < ICE_HEADER_SIZE {
		d.bits = 1
		return b
	}
	next := int(d.in[d.src])
	d.bits = ((next << 1) & 0xFF) | 1
	return (next >> 7) & 1
}

func (d *iceDecoder) read(n int) int {
	v := 0
	for ; n > 0; n-- {
		v = v<<1 | d.bit()
	}
	return v
}

// prefix counts leading one bits, up to limit.
func (d *iceDecoder) prefix(limit int) int {
	i := 0
	for i < limit && d.bit() != 0 {
		i++
	}
	return i
}

func (d *iceDecoder) literalLength() int {
	i, n := 0, 0
	for ; i < len(iceLiteralBits); i++ {
		n = d.read(iceLiteralBits[i])
		if n != iceLiteralAllSet[i] {
			break
		}
	}
	return n + iceLiteralBase[i]
}

func (d *iceDecoder) matchLength() int {
	i := d.prefix(4)
	n := iceMatchLenBase[i]
	if iceMatchLenBits[i] > 0 {
		n += d.read(iceMatchLenBits[i])
	}
	return n
}

func (d *iceDecoder) matchOffset(length int) int {
	if length == 2 {
		if d.bit() != 0 {
			return d.read(9) + 0x3F
		}
		return d.read(6) - 1
	}
	i := d.prefix(2)
	off := d.read(iceOffsetBits[i]) + iceOffsetBase[i]
	if off < 0 {
		off -= length - 2
	}
	return off
}

func (d *iceDecoder) run() error {
	for {
		if d.bit() != 0 {
			n := d.literalLength()
			d.src -= n
			d.dst -= n
			if d.dst < 0 || d.src < ICE_HEADER_SIZE {
				return fmt.Errorf("%w: literal run of %d overflows", ErrICECorrupt, n)
			}
			copy(d.out[d.dst:], d.in[d.src:d.src+n])
		}
		if d.dst <= 0 {
			return nil
		}

		n := d.matchLength()
		off := d.matchOffset(n)
		d.dst -= n
		if d.dst < 0 {
			return fmt.Errorf("%w: match of %d overflows", ErrICECorrupt, n)
		}
		from := d.dst + n + off
		// Copy from the high end down so overlapping matches repeat correctly
		for i := n - 1; i >= 0; i-- {
			if j := from + i; j >= 0 && j < len(d.out) {
				d.out[d.dst+i] = d.out[j]
			}
		}
	}
}
