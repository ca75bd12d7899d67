//go:build !headless

// playback.go - Live output through OTO v3

package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// otoStream feeds oto from a renderer. oto pulls from its own goroutine, so
// the renderer is only touched from there once playback starts.
type otoStream struct {
	src     renderer
	buf     []int16
	left    int
	loops   int
	mutex   sync.Mutex
	failure error
}

func (s *otoStream) Read(p []byte) (int, error) {
	if s.left <= 0 {
		return 0, io.EOF
	}
	n := min(len(p)/2, s.left)
	if n == 0 {
		return 0, nil
	}
	if len(s.buf) < n {
		s.buf = make([]int16, n)
	}
	samples := s.buf[:n]
	loops, err := s.src.Render(samples, nil)
	if err != nil {
		s.mutex.Lock()
		s.failure = err
		s.mutex.Unlock()
		return 0, io.EOF
	}
	s.mutex.Lock()
	s.loops = loops
	s.mutex.Unlock()

	for i, v := range samples {
		binary.LittleEndian.PutUint16(p[i*2:], uint16(v))
	}
	s.left -= n
	return n * 2, nil
}

func (s *otoStream) status() (int, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.loops, s.failure
}

func playFile(path string, opts options, stdout io.Writer) error {
	r, err := openRenderer(path, opts)
	if err != nil {
		return err
	}
	info := r.Info()
	st := newStyles(opts.color)
	title := info.Title
	if title == "" {
		title = path
	}
	fmt.Fprintf(stdout, "%s %s\n", st.heading.Render("Playing"), title)

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   opts.rate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   100 * time.Millisecond,
	})
	if err != nil {
		return fmt.Errorf("audio: %w", err)
	}
	<-ready

	stream := &otoStream{src: r, left: sampleCount(info, opts)}
	player := ctx.NewPlayer(stream)
	defer player.Close()
	player.Play()

	for player.IsPlaying() {
		time.Sleep(50 * time.Millisecond)
	}
	loops, err := stream.status()
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := player.Err(); err != nil {
		return fmt.Errorf("audio: %w", err)
	}
	if loops > 0 {
		fmt.Fprintf(stdout, "%s looped %d time(s)\n", title, loops)
	}
	return nil
}
