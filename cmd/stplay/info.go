// info.go - Metadata listing for SNDH and YM files

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/intuitionamiga/stsound"
)

func printInfo(files []string, opts options, stdout io.Writer) error {
	st := newStyles(opts.color)
	var errs []error
	for _, path := range files {
		fmt.Fprintln(stdout, st.heading.Render(path))
		if err := describeFile(path, st, stdout); err != nil {
			fmt.Fprintf(stdout, "  %s\n", st.err.Render(err.Error()))
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
		}
	}
	return errors.Join(errs...)
}

func describeFile(path string, st styles, stdout io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	field := func(label string, value any) {
		fmt.Fprintf(stdout, "  %s %s\n", st.label.Render(fmt.Sprintf("%-9s", label)), st.value.Render(fmt.Sprint(value)))
	}

	if stsound.IsSNDH(data) {
		f, err := stsound.ParseSNDH(data)
		if err != nil {
			return err
		}
		h := f.Header
		field("Format", formatName("SNDH", f.Packed))
		field("Title", h.Title)
		field("Composer", h.Composer)
		if h.Ripper != "" {
			field("Ripper", h.Ripper)
		}
		if h.Year != "" {
			field("Year", h.Year)
		}
		field("Subsongs", fmt.Sprintf("%d (default %d)", h.SubSongCount, h.DefaultSong))
		field("Timer", fmt.Sprintf("%s at %d Hz", h.TimerType, h.TimerFreq))
		for i := 1; i <= h.SubSongCount; i++ {
			label := st.label.Render(fmt.Sprintf("%-9s", fmt.Sprintf("Song %d", i)))
			if d := f.SubSongDuration(i); d > 0 {
				fmt.Fprintf(stdout, "  %s %s\n", label, st.value.Render(fmt.Sprintf("%d:%02d", d/60, d%60)))
			} else {
				fmt.Fprintf(stdout, "  %s %s\n", label, st.dim.Render("unknown length"))
			}
		}
		if len(h.Flags) > 0 {
			field("Flags", strings.Join(h.Flags, " "))
		}
		return nil
	}

	d, err := stsound.ParseYMDump(data)
	if err != nil {
		return err
	}
	field("Format", formatName(string(data[:4]), d.Interleaved))
	field("Title", d.Title)
	field("Author", d.Author)
	if d.Comments != "" {
		field("Comments", d.Comments)
	}
	field("Frames", fmt.Sprintf("%d at %d Hz, loop to %d", len(d.Frames), d.FrameRate, d.LoopFrame))
	field("Clock", fmt.Sprintf("%d Hz", d.ClockHz))
	secs := len(d.Frames) / d.FrameRate
	field("Length", fmt.Sprintf("%d:%02d", secs/60, secs%60))
	return nil
}

func formatName(name string, variant bool) string {
	switch {
	case name == "SNDH" && variant:
		return "SNDH (ICE! packed)"
	case variant:
		return name + " (interleaved)"
	}
	return name
}
