// wav.go - Offline rendering to WAV

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"golang.org/x/sync/errgroup"
)

const renderChunk = 4096

func renderSamples(r renderer, total int) ([]int16, error) {
	out := make([]int16, total)
	for pos := 0; pos < total; pos += renderChunk {
		end := min(pos+renderChunk, total)
		if _, err := r.Render(out[pos:end], nil); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// writeWAV stores samples as 16-bit mono PCM.
func writeWAV(path string, rate int, samples []int16) (rerr error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("wav: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil && rerr == nil {
			rerr = fmt.Errorf("wav: %w", err)
		}
	}()

	enc := wav.NewEncoder(f, rate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: rate},
		Data:           make([]int, len(samples)),
		SourceBitDepth: 16,
	}
	for i, s := range samples {
		buf.Data[i] = int(s)
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("wav: %w", err)
	}
	return nil
}

func convertFile(src, dst string, opts options) error {
	r, err := openRenderer(src, opts)
	if err != nil {
		return err
	}
	samples, err := renderSamples(r, sampleCount(r.Info(), opts))
	if err != nil {
		return fmt.Errorf("%s: %w", src, err)
	}
	return writeWAV(dst, opts.rate, samples)
}

// convertAll renders each file into outDir. Every file gets its own machine,
// so the conversions run side by side.
func convertAll(files []string, opts options, stdout io.Writer) error {
	if len(files) == 0 {
		return fmt.Errorf("-outdir needs at least one file")
	}
	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return err
	}

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for _, src := range files {
		src := src
		name := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)) + ".wav"
		dst := filepath.Join(opts.outDir, name)
		g.Go(func() error {
			return convertFile(src, dst, opts)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Converted %d file(s) into %s\n", len(files), opts.outDir)
	return nil
}
