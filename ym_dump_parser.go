// ym_dump_parser.go - YM5!/YM6! register dump parser

package stsound

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	ymDumpSignature   = "LeOnArD!"
	ymAttrInterleaved = 0x01
)

var ErrNotYMDump = errors.New("not a YM5!/YM6! register dump")

// YMDump is a decoded register dump: one 16-register frame per player tick.
type YMDump struct {
	Frames      [][YM_REG_COUNT]uint8
	FrameRate   int
	ClockHz     uint32
	LoopFrame   int
	Title       string
	Author      string
	Comments    string
	Interleaved bool
}

// ymReader walks the big-endian header fields.
type ymReader struct {
	data []byte
	off  int
	err  error
}

func (r *ymReader) u16() uint16 {
	if r.err != nil || r.off+2 > len(r.data) {
		r.err = io.ErrUnexpectedEOF
		return 0
	}
	v := binary.BigEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v
}

func (r *ymReader) u32() uint32 {
	if r.err != nil || r.off+4 > len(r.data) {
		r.err = io.ErrUnexpectedEOF
		return 0
	}
	v := binary.BigEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v
}

func (r *ymReader) skip(n int) {
	if r.err != nil || n < 0 || r.off+n > len(r.data) {
		r.err = io.ErrUnexpectedEOF
		return
	}
	r.off += n
}

func (r *ymReader) str() string {
	if r.err != nil || r.off >= len(r.data) {
		return ""
	}
	s, next := cString(r.data, r.off)
	r.off = next
	return s
}

// ParseYMDump decodes an uncompressed YM5! or YM6! file.
func ParseYMDump(data []byte) (*YMDump, error) {
	if len(data) < 12 {
		return nil, ErrNotYMDump
	}
	id := string(data[:4])
	if id != "YM5!" && id != "YM6!" {
		return nil, fmt.Errorf("%w: id %q", ErrNotYMDump, id)
	}
	if string(data[4:12]) != ymDumpSignature {
		return nil, fmt.Errorf("%w: bad signature", ErrNotYMDump)
	}

	r := &ymReader{data: data, off: 12}
	frameCount := int(r.u32())
	attrs := r.u32()
	drums := int(r.u16())
	clock := r.u32()
	rate := int(r.u16())
	loop := int(r.u32())
	r.skip(int(r.u16()))
	title := r.str()
	author := r.str()
	comments := r.str()
	for i := 0; i < drums; i++ {
		r.skip(int(r.u32()))
	}
	if r.err != nil {
		return nil, fmt.Errorf("ym: header: %w", r.err)
	}

	debugf("ym: frames=%d attrs=0x%X drums=%d clock=%d rate=%d loop=%d title=%q",
		frameCount, attrs, drums, clock, rate, loop, title)

	body := data[r.off:]
	regs := YM_REG_COUNT
	if len(body) < frameCount*regs {
		regs = YM_PLAY_REGS
		if len(body) < frameCount*regs {
			return nil, fmt.Errorf("ym: frame data too short: %d bytes for %d frames", len(body), frameCount)
		}
	}

	dump := &YMDump{
		Frames:      make([][YM_REG_COUNT]uint8, frameCount),
		FrameRate:   rate,
		ClockHz:     clock,
		LoopFrame:   loop,
		Title:       title,
		Author:      author,
		Comments:    comments,
		Interleaved: attrs&ymAttrInterleaved != 0,
	}
	if dump.FrameRate <= 0 {
		dump.FrameRate = 50
	}
	if dump.ClockHz == 0 {
		dump.ClockHz = YM_CLOCK_ST
	}
	if dump.LoopFrame >= frameCount {
		dump.LoopFrame = 0
	}

	for reg := 0; reg < regs; reg++ {
		for f := 0; f < frameCount; f++ {
			if dump.Interleaved {
				dump.Frames[f][reg] = body[reg*frameCount+f]
			} else {
				dump.Frames[f][reg] = body[f*regs+reg]
			}
		}
	}
	return dump, nil
}
