// source.go - Opening SNDH and YM files as sample sources

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/intuitionamiga/stsound"
)

var errNeedsCore = errors.New("SNDH playback needs a 68000 core, this build only renders YM dumps")

// renderer is the part of a player the CLI drives.
type renderer interface {
	Render(out []int16, vis []uint32) (int, error)
	Info() stsound.SubSongInfo
}

func openRenderer(path string, opts options) (renderer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if stsound.IsSNDH(data) {
		if opts.newCore == nil {
			if _, err := stsound.ParseSNDH(data); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			return nil, fmt.Errorf("%s: %w", path, errNeedsCore)
		}
		p, err := stsound.NewSNDHPlayer(data, opts.newCore, uint32(opts.rate))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if err := p.InitSubSong(opts.subsong); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return p, nil
	}

	dump, err := stsound.ParseYMDump(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	p, err := stsound.NewYMDumpPlayer(dump, uint32(opts.rate))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// sampleCount picks the render length: the -seconds flag, else the song's own
// length, else a fixed default for songs that never end.
func sampleCount(info stsound.SubSongInfo, opts options) int {
	seconds := opts.seconds
	if seconds <= 0 && info.TickCount > 0 && info.TickRate > 0 {
		seconds = float64(info.TickCount) / float64(info.TickRate)
	}
	if seconds <= 0 {
		seconds = defaultSeconds
	}
	return int(seconds * float64(opts.rate))
}
