// SPDX-License-Identifier: MIT

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"stdinlines/lines"
)

// processInputs echoes or counts the lines of every input in order.  The name "-" denotes stdin.
// It stops at the first input that cannot be opened or read; everything echoed up to that point
// has been written to output.
func processInputs(inputs []string, stdin io.Reader, output *bufio.Writer, cfg *config, opts []lines.Option) error {
	total := 0
	for _, inputFn := range inputs {
		n, err := processInput(inputFn, stdin, output, cfg, opts, total)
		total += n
		if err != nil {
			return err
		}
	}
	if cfg.Count {
		fmt.Fprintf(output, "%d\n", total)
	}
	return nil
}

// processInput handles a single input.  Line numbers start after lineno, and the number of lines
// read is returned even on failure.
func processInput(inputFn string, stdin io.Reader, output *bufio.Writer, cfg *config, opts []lines.Option, lineno int) (int, error) {
	name := inputFn
	input := stdin
	if inputFn == "-" {
		name = "standard input"
	} else {
		f, err := os.Open(inputFn)
		if err != nil {
			return 0, errors.WithStack(err)
		}
		defer f.Close()
		input = f
	}
	glog.V(1).Infof("Reading %s", name)

	raw := cfg.Mode == lines.Raw.String()
	term := cfg.terminator()
	n := 0
	for l, err := range lines.NewReader(input, opts...).All() {
		if err != nil {
			return n, errors.Wrapf(err, "reading %s", name)
		}
		n++
		if cfg.Count {
			continue
		}
		if cfg.Number {
			fmt.Fprintf(output, "%6d\t", lineno+n)
		}
		output.Write(l.Text)
		if !raw {
			output.WriteByte(term)
		}
	}
	glog.V(1).Infof("%s: %d lines", name, n)
	return n, nil
}
