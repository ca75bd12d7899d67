// sndh_parser.go - SNDH container parsing: tag header, entry points, subsong timing
//
// An SNDH file is 68000 replay code preceded by a tag header. The first
// three longwords are branches to INIT, EXIT and PLAY; tags follow the
// "SNDH" magic and end at "HDNS".

package stsound

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	SNDH_INIT_OFFSET = 0
	SNDH_EXIT_OFFSET = 4
	SNDH_PLAY_OFFSET = 8
	SNDH_MAGIC_SPAN  = 16 // the magic must start within the first 16 bytes
)

var (
	sndhMagic = []byte("SNDH")
	sndhEnd   = []byte("HDNS")

	ErrNotSNDH = errors.New("SNDH magic not found")
)

// SNDHHeader holds the tag metadata of an SNDH file.
type SNDHHeader struct {
	Title        string
	Composer     string
	Ripper       string
	Converter    string
	Year         string
	SubSongCount int
	DefaultSong  int
	TimerType    string // "A", "B", "C", "D" or "V" for the vertical blank
	TimerFreq    int
	Durations    []int // seconds per subsong, 0 when unknown
	Flags        []string
}

// SNDHFile is an unpacked SNDH image ready to upload.
type SNDHFile struct {
	Header     SNDHHeader
	Data       []byte
	Packed     bool
	InitTarget int // branch destinations, for diagnostics
	ExitTarget int
	PlayTarget int
	CodeOffset int
}

// IsSNDH reports whether data looks like an SNDH file, packed or not.
func IsSNDH(data []byte) bool {
	if isICE(data) {
		return true
	}
	return findSNDHMagic(data, SNDH_MAGIC_SPAN) >= 0
}

func findSNDHMagic(data []byte, limit int) int {
	if limit > len(data) {
		limit = len(data)
	}
	return bytes.Index(data[:limit], sndhMagic)
}

// ParseSNDH decodes an SNDH image, unpacking ICE! data first when needed.
func ParseSNDH(data []byte) (*SNDHFile, error) {
	file := &SNDHFile{}
	if isICE(data) {
		unpacked, err := UnpackICE(data)
		if err != nil {
			return nil, fmt.Errorf("sndh: %w", err)
		}
		data = unpacked
		file.Packed = true
	}

	magic := findSNDHMagic(data, SNDH_MAGIC_SPAN)
	if magic < 0 {
		return nil, ErrNotSNDH
	}
	file.Data = data
	file.InitTarget = branchTarget(data, SNDH_INIT_OFFSET)
	file.ExitTarget = branchTarget(data, SNDH_EXIT_OFFSET)
	file.PlayTarget = branchTarget(data, SNDH_PLAY_OFFSET)

	h := &file.Header
	h.SubSongCount = 1
	h.DefaultSong = 1
	h.TimerType = "C"
	h.TimerFreq = 50

	pos := magic + len(sndhMagic)
	for pos+4 <= len(data) {
		if data[pos] == 0 {
			pos++
			continue
		}
		if bytes.Equal(data[pos:pos+4], sndhEnd) {
			file.CodeOffset = alignEvenInt(pos + 4)
			break
		}
		pos = h.parseTag(data, pos)
	}
	if file.CodeOffset == 0 {
		return nil, fmt.Errorf("sndh: header not terminated by HDNS")
	}
	return file, nil
}

func alignEvenInt(v int) int {
	return (v + 1) &^ 1
}

// parseTag decodes the tag at pos and returns the position after it.
func (h *SNDHHeader) parseTag(data []byte, pos int) int {
	tag := string(data[pos : pos+4])
	switch tag {
	case "TITL":
		h.Title, pos = cString(data, pos+4)
		return pos
	case "COMM":
		h.Composer, pos = cString(data, pos+4)
		return pos
	case "RIPP":
		h.Ripper, pos = cString(data, pos+4)
		return pos
	case "CONV":
		h.Converter, pos = cString(data, pos+4)
		return pos
	case "YEAR":
		h.Year, pos = cString(data, pos+4)
		return pos
	case "FLAG":
		var flags string
		flags, pos = cString(data, pos+4)
		if flags != "" {
			h.Flags = append(h.Flags, flags)
		}
		return pos
	case "TIME":
		pos += 4
		h.Durations = make([]int, h.SubSongCount)
		for i := range h.Durations {
			if pos+2 > len(data) {
				break
			}
			h.Durations[i] = int(binary.BigEndian.Uint16(data[pos:]))
			pos += 2
		}
		return pos
	}

	// Numeric tags run on as a C string: ##04, !#02, TC200, !V50
	value, next := cString(data, pos)
	switch {
	case strings.HasPrefix(value, "##"):
		if n, err := strconv.Atoi(value[2:]); err == nil && n > 0 {
			h.SubSongCount = n
		}
	case strings.HasPrefix(value, "!#"):
		if n, err := strconv.Atoi(value[2:]); err == nil && n > 0 {
			h.DefaultSong = n
		}
	case strings.HasPrefix(value, "!V"):
		h.TimerType = "V"
		if n, err := strconv.Atoi(value[2:]); err == nil && n > 0 {
			h.TimerFreq = n
		}
	case len(value) > 2 && value[0] == 'T' && strings.ContainsRune("ABCD", rune(value[1])):
		if n, err := strconv.Atoi(value[2:]); err == nil && n > 0 {
			h.TimerType = value[1:2]
			h.TimerFreq = n
		}
	default:
		debugf("sndh: skipping unknown tag %q", value)
	}
	return next
}

// cString reads a NUL-terminated string and returns the offset after the NUL.
func cString(data []byte, pos int) (string, int) {
	end := bytes.IndexByte(data[pos:], 0)
	if end < 0 {
		return string(data[pos:]), len(data)
	}
	return string(data[pos : pos+end]), pos + end + 1
}

// branchTarget decodes a BRA.B or BRA.W at offset, returning -1 otherwise.
func branchTarget(data []byte, offset int) int {
	if offset+4 > len(data) {
		return -1
	}
	op := binary.BigEndian.Uint16(data[offset:])
	if op&0xFF00 != 0x6000 {
		return -1
	}
	if disp := int8(op); disp != 0 {
		return offset + 2 + int(disp)
	}
	return offset + 2 + int(int16(binary.BigEndian.Uint16(data[offset+2:])))
}

// SubSongDuration returns the length of a 1-based subsong in seconds.
func (f *SNDHFile) SubSongDuration(subsong int) int {
	idx := subsong - 1
	if idx < 0 || idx >= len(f.Header.Durations) {
		return 0
	}
	return f.Header.Durations[idx]
}

// SubSongInfo derives the tick schedule and metadata for a 1-based subsong.
func (f *SNDHFile) SubSongInfo(subsong int, hostRate uint32) SubSongInfo {
	rate := f.Header.TimerFreq
	if rate <= 0 {
		rate = 50
	}
	return SubSongInfo{
		TickCount:      f.SubSongDuration(subsong) * rate,
		TickRate:       rate,
		SamplesPerTick: max(1, int(hostRate)/rate),
		Title:          f.Header.Title,
		Author:         f.Header.Composer,
		Year:           f.Header.Year,
	}
}
