// SPDX-License-Identifier: MIT

/*
Stdinlines echoes or counts the lines of its input, which is normally a pipe on standard input.

Input file names are provided on the command line.  With no names, or with the single name "-",
lines are read from standard input.  Lines may be of any length and are never split.

Usage:

	stdinlines [flags] [input-filename ...]

The flags are:

	-c
	    Print only the total number of lines.

	-n
	    Prefix each echoed line with its line number.  Numbering continues across input files.

	-r
	    Raw mode: echo each line exactly as read, including its terminator.  Without -r every
	    echoed line ends with a terminator, even if the last input line did not.

	-0
	    Lines are terminated by NUL rather than LF, as produced by find -print0.

	--crlf
	    Strip a CR preceding each LF.  Ignored with -r.

	-o output-filename
	    Write output to output-filename rather than to standard output.  "-" is standard output.
	    The file is not created or truncated until there is output to write, or the run succeeds.

	--config pathname
	    Load defaults from a YAML file, see config.go.  Flags override the file.  If not given,
	    the STDINLINES_CONFIG environment variable is consulted.

	-v
	    Log per-input progress to standard error.

	-V, --version
	    Print version information and exit.

	-h
	    Print help and exit.

The exit code is 0 on success, 1 if an input could not be opened or read, and 2 for bad arguments
or configuration.  Lines produced before a read failure have been written when the program exits.
*/
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"stdinlines/lines"
)

const VERSION = "0.1.0"

type cmdline struct {
	configFile string
	verbose    bool
	help       bool
	version    bool
	inputs     []string
	overrides  []func(*config)
}

func main() {
	// glog's flags are not part of our command line, so settle them here.
	if err := flag.CommandLine.Parse(nil); err != nil {
		fmt.Fprintf(os.Stderr, "stdinlines: %v\n", err)
		os.Exit(2)
	}
	if err := flag.Set("logtostderr", "true"); err != nil {
		fmt.Fprintf(os.Stderr, "stdinlines: %v\n", err)
		os.Exit(2)
	}

	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes one command line and returns the exit code.  Each failure is reported once on
// stderr; with -v its stack is also logged.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	defer glog.Flush()

	fail := func(code int, err error) int {
		fmt.Fprintf(stderr, "stdinlines: %v\n", err)
		glog.V(1).Infof("%+v", err)
		return code
	}

	cl, err := parseArguments(args)
	if err != nil {
		fmt.Fprintf(stderr, "%v.  Try -h.\n", err)
		return 2
	}
	if cl.help {
		fmt.Fprint(stdout, usage)
		return 0
	}
	if cl.version {
		fmt.Fprintf(stdout, "stdinlines v%s\n", VERSION)
		return 0
	}
	if cl.verbose {
		if err := flag.Set("v", "1"); err != nil {
			return fail(2, err)
		}
	}

	cfg := defaultConfig()
	configFile := cl.configFile
	if configFile == "" {
		configFile = os.Getenv(configEnv)
	}
	if configFile != "" {
		if err := cfg.load(configFile); err != nil {
			return fail(2, err)
		}
	}
	for _, override := range cl.overrides {
		override(cfg)
	}
	opts, err := cfg.readerOptions()
	if err != nil {
		return fail(2, err)
	}

	output := stdout
	var file *outputFile
	if cfg.Output != "" && cfg.Output != "-" {
		file = &outputFile{name: cfg.Output}
		output = file
	}

	w := bufio.NewWriter(output)
	err = processInputs(cl.inputs, stdin, w, cfg, opts)
	if ferr := w.Flush(); err == nil && ferr != nil {
		err = errors.Wrap(ferr, "writing output")
	}
	if file != nil {
		if cerr := file.Close(err == nil); err == nil && cerr != nil {
			err = errors.Wrap(cerr, "writing output")
		}
	}
	if err != nil {
		return fail(1, err)
	}
	return 0
}

// outputFile creates its file on the first write, so a run that fails before producing any output
// leaves an existing file untouched.
type outputFile struct {
	name string
	f    *os.File
}

func (o *outputFile) Write(p []byte) (int, error) {
	if o.f == nil {
		if err := o.create(); err != nil {
			return 0, err
		}
	}
	return o.f.Write(p)
}

func (o *outputFile) create() error {
	f, err := os.Create(o.name)
	if err != nil {
		return errors.WithStack(err)
	}
	o.f = f
	return nil
}

// Close closes the file.  If nothing was written the file is created empty when ok is set, and
// left alone otherwise.
func (o *outputFile) Close(ok bool) error {
	if o.f == nil {
		if !ok {
			return nil
		}
		if err := o.create(); err != nil {
			return err
		}
	}
	return o.f.Close()
}

const usage = `Usage: stdinlines [options] [input-filename ...]

With no input-filename, or when input-filename is "-", read standard input.

Options:

-c
  Print the number of lines instead of the lines
-n
  Number the output lines
-r
  Echo lines exactly as read, terminators included
-0
  Lines are NUL-terminated
--crlf
  Strip CR before LF
-o filename
  Filename of output file, "-" for stdout, default stdout
--config filename
  YAML file with default settings, default $` + configEnv + `
-v
  Enable verbose output
-V, --version
  Print version information
`

// Flags are parsed by hand so that bundling and ordering match the common line tools: flags and
// file names may be mixed, and "-" is a file name.

func parseArguments(args []string) (*cmdline, error) {
	cl := &cmdline{}
	n := len(args)
	i := 0
	for i < n {
		arg := args[i]
		i++
		switch arg {
		case "-h", "--help":
			cl.help = true

		case "-V", "--version":
			cl.version = true

		case "-v":
			cl.verbose = true

		case "-c":
			cl.set(func(c *config) { c.Count = true })

		case "-n":
			cl.set(func(c *config) { c.Number = true })

		case "-r":
			cl.set(func(c *config) { c.Mode = lines.Raw.String() })

		case "-0":
			cl.set(func(c *config) { c.Terminator = terminatorNUL })

		case "--crlf":
			cl.set(func(c *config) { c.CRLF = true })

		case "-o":
			if i == n {
				return nil, errors.New("missing argument to -o")
			}
			out := args[i]
			i++
			cl.set(func(c *config) { c.Output = out })

		case "--config":
			if i == n {
				return nil, errors.New("missing argument to --config")
			}
			cl.configFile = args[i]
			i++

		default:
			if len(arg) > 1 && arg[0] == '-' {
				return nil, errors.Errorf("unknown option %s", arg)
			}
			cl.inputs = append(cl.inputs, arg)
		}
	}
	if len(cl.inputs) == 0 {
		cl.inputs = append(cl.inputs, "-")
	}
	return cl, nil
}

func (cl *cmdline) set(f func(*config)) {
	cl.overrides = append(cl.overrides, f)
}
