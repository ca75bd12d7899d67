//go:build headless

// playback_headless.go - Stub playback for builds without an audio device

package main

import (
	"errors"
	"io"
)

func playFile(path string, opts options, stdout io.Writer) error {
	if _, err := openRenderer(path, opts); err != nil {
		return err
	}
	return errors.New("built without audio output, use -wav instead")
}
