// SPDX-License-Identifier: MIT

package main

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"stdinlines/lines"
)

const configEnv = "STDINLINES_CONFIG"

const (
	terminatorLF  = "lf"
	terminatorNUL = "nul"
)

// A config file holds defaults for the command line flags, eg
//
//	mode: raw          # or trimmed
//	terminator: nul    # or lf
//	crlf: false
//	number: true
//	count: false
//	output: lines.out
//	chunk_size: 65536
//
// Every key is optional.  Unknown keys are an error.
type config struct {
	Mode       string `yaml:"mode"`
	Terminator string `yaml:"terminator"`
	CRLF       bool   `yaml:"crlf"`
	Number     bool   `yaml:"number"`
	Count      bool   `yaml:"count"`
	Output     string `yaml:"output"`
	ChunkSize  int    `yaml:"chunk_size"`
}

func defaultConfig() *config {
	return &config{
		Mode:       lines.Trimmed.String(),
		Terminator: terminatorLF,
	}
}

func (c *config) load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "config")
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && err != io.EOF {
		return errors.Wrapf(err, "config %s", path)
	}
	return nil
}

func (c *config) terminator() byte {
	if c.Terminator == terminatorNUL {
		return 0
	}
	return '\n'
}

func (c *config) readerOptions() ([]lines.Option, error) {
	var opts []lines.Option

	switch c.Mode {
	case lines.Trimmed.String():
	case lines.Raw.String():
		opts = append(opts, lines.WithMode(lines.Raw))
	default:
		return nil, errors.Errorf("config: bad mode %q, want %q or %q", c.Mode, lines.Trimmed, lines.Raw)
	}

	switch c.Terminator {
	case terminatorLF, terminatorNUL:
		opts = append(opts, lines.WithTerminator(c.terminator()))
	default:
		return nil, errors.Errorf("config: bad terminator %q, want %q or %q", c.Terminator, terminatorLF, terminatorNUL)
	}

	if c.CRLF {
		opts = append(opts, lines.WithDropCR())
	}
	if c.ChunkSize < 0 {
		return nil, errors.Errorf("config: bad chunk_size %d", c.ChunkSize)
	}
	if c.ChunkSize > 0 {
		opts = append(opts, lines.WithChunkSize(c.ChunkSize))
	}
	return opts, nil
}
