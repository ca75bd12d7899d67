// sndh_player.go - SNDH playback session on top of the Machine

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package stsound

import "fmt"

// SNDHPlayer plays one SNDH file through a Machine with an external core.
type SNDHPlayer struct {
	machine  *Machine
	file     *SNDHFile
	hostRate uint32
	subsong  int
	started  bool
}

// NewSNDHPlayer parses data and prepares a machine. newCore must not be nil.
func NewSNDHPlayer(data []byte, newCore CoreFactory, hostRate uint32) (*SNDHPlayer, error) {
	if newCore == nil {
		return nil, ErrNoCore
	}
	file, err := ParseSNDH(data)
	if err != nil {
		return nil, err
	}
	return &SNDHPlayer{
		machine:  NewMachine(newCore),
		file:     file,
		hostRate: hostRate,
	}, nil
}

func (p *SNDHPlayer) File() *SNDHFile   { return p.file }
func (p *SNDHPlayer) Machine() *Machine { return p.machine }
func (p *SNDHPlayer) SubSong() int      { return p.subsong }

// InitSubSong restarts the machine, uploads the image and runs INIT for a
// 1-based subsong. Zero selects the file's default subsong.
func (p *SNDHPlayer) InitSubSong(subsong int) error {
	if subsong == 0 {
		subsong = p.file.Header.DefaultSong
	}
	if subsong < 1 || subsong > p.file.Header.SubSongCount {
		return fmt.Errorf("sndh: subsong %d out of range 1..%d", subsong, p.file.Header.SubSongCount)
	}

	m := p.machine
	if err := m.Startup(p.hostRate); err != nil {
		return err
	}
	if err := m.Upload(p.file.Data, SNDH_LOAD_ADDR); err != nil {
		return err
	}
	ok, err := m.CallAndWait(SNDH_LOAD_ADDR+SNDH_INIT_OFFSET, uint32(subsong), INIT_TIMEOUT_TICKS)
	if err != nil {
		return fmt.Errorf("sndh: init subsong %d: %w", subsong, err)
	}
	if !ok {
		return fmt.Errorf("sndh: init subsong %d did not return within %d ticks", subsong, INIT_TIMEOUT_TICKS)
	}

	m.SetSubSong(p.file.SubSongInfo(subsong, p.hostRate), SNDH_LOAD_ADDR+SNDH_PLAY_OFFSET)
	p.subsong = subsong
	p.started = true
	return nil
}

// Info returns the schedule of the current subsong.
func (p *SNDHPlayer) Info() SubSongInfo {
	return p.machine.SubSong()
}

// Render produces samples for the current subsong and returns the loop count.
func (p *SNDHPlayer) Render(out []int16, vis []uint32) (int, error) {
	if !p.started {
		return 0, ErrNotStarted
	}
	return p.machine.Render(out, vis)
}

// Exit runs the EXIT routine so the replay can silence the chip.
func (p *SNDHPlayer) Exit() error {
	if !p.started {
		return nil
	}
	p.started = false
	if _, err := p.machine.CallAndWait(SNDH_LOAD_ADDR+SNDH_EXIT_OFFSET, 0, 1); err != nil {
		return fmt.Errorf("sndh: exit: %w", err)
	}
	return nil
}
