// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing/iotest"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
)

var _ = Describe("run", func() {
	var stdout, stderr *bytes.Buffer

	BeforeEach(func() {
		stdout = new(bytes.Buffer)
		stderr = new(bytes.Buffer)
		Expect(os.Unsetenv(configEnv)).To(Succeed())
	})

	exec := func(stdin string, args ...string) int {
		return run(args, strings.NewReader(stdin), stdout, stderr)
	}

	Describe("echo", func() {
		It("echoes stdin with a terminator after every line", func() {
			Expect(exec("line1\nline2\nline3")).To(Equal(0))
			Expect(stdout.String()).To(Equal("line1\nline2\nline3\n"))
		})

		It("reproduces the input exactly in raw mode", func() {
			in := "a\r\n\nb\x00c\nno newline"
			Expect(exec(in, "-r")).To(Equal(0))
			Expect(stdout.String()).To(Equal(in))
		})

		It("writes nothing for empty input", func() {
			Expect(exec("")).To(Equal(0))
			Expect(stdout.Len()).To(BeZero())
		})

		It("numbers lines across inputs", func() {
			Expect(exec("x\n", "-n", "testdata/three.txt", "-")).To(Equal(0))
			Expect(stdout.String()).To(Equal(
				"     1\tline1\n     2\tline2\n     3\tline3\n     4\tx\n"))
		})

		It("splits on NUL with -0", func() {
			Expect(exec("a\x00b c\x00", "-0", "-n")).To(Equal(0))
			Expect(stdout.String()).To(Equal("     1\ta\x00     2\tb c\x00"))
		})

		It("strips CR with --crlf", func() {
			Expect(exec("", "--crlf", "testdata/crlf.txt")).To(Equal(0))
			Expect(stdout.String()).To(Equal("a\nb\n"))
		})

		It("echoes a very long line unsplit", func() {
			long := strings.Repeat("z", 1<<20)
			Expect(exec(long)).To(Equal(0))
			Expect(stdout.String()).To(Equal(long + "\n"))
		})
	})

	Describe("count", func() {
		It("counts stdin", func() {
			Expect(exec("line1\nline2\nline3", "-c")).To(Equal(0))
			Expect(stdout.String()).To(Equal("3\n"))
		})

		It("counts zero lines for empty input", func() {
			Expect(exec("", "-c")).To(Equal(0))
			Expect(stdout.String()).To(Equal("0\n"))
		})

		It("counts empty lines", func() {
			Expect(exec("\n\n", "-c")).To(Equal(0))
			Expect(stdout.String()).To(Equal("2\n"))
		})

		It("sums over all inputs", func() {
			Expect(exec("", "-c", "testdata/three.txt", "testdata/crlf.txt")).To(Equal(0))
			Expect(stdout.String()).To(Equal("5\n"))
		})
	})

	Describe("failures", func() {
		It("keeps lines read before a read failure and exits 1", func() {
			stdin := io.MultiReader(strings.NewReader("first\nsecond"), iotest.ErrReader(errors.New("boom")))
			Expect(run(nil, stdin, stdout, stderr)).To(Equal(1))
			Expect(stdout.String()).To(Equal("first\n"))
			Expect(stderr.String()).To(ContainSubstring("reading standard input"))
			Expect(stderr.String()).To(ContainSubstring("boom"))
			Expect(strings.Count(stderr.String(), "stdinlines:")).To(Equal(1))
		})

		It("reports a missing input once", func() {
			Expect(exec("", "testdata/missing.txt")).To(Equal(1))
			Expect(stderr.String()).To(ContainSubstring("testdata/missing.txt"))
			Expect(strings.Count(stderr.String(), "stdinlines:")).To(Equal(1))
		})

		It("reports a bad config once", func() {
			Expect(exec("a", "--config", "testdata/badterm.yaml")).To(Equal(2))
			Expect(stderr.String()).To(ContainSubstring("bad terminator"))
			Expect(strings.Count(stderr.String(), "stdinlines:")).To(Equal(1))
		})

		It("prints no total when counting fails", func() {
			stdin := io.MultiReader(strings.NewReader("first\n"), iotest.ErrReader(errors.New("boom")))
			Expect(run([]string{"-c"}, stdin, stdout, stderr)).To(Equal(1))
			Expect(stdout.Len()).To(BeZero())
		})

		It("stops at a missing input", func() {
			Expect(exec("", "testdata/three.txt", "testdata/missing.txt", "testdata/crlf.txt")).To(Equal(1))
			Expect(stdout.String()).To(Equal("line1\nline2\nline3\n"))
		})

		It("rejects unknown options", func() {
			Expect(exec("", "-x")).To(Equal(2))
			Expect(stderr.String()).To(ContainSubstring("unknown option -x"))
		})

		It("rejects -o without a file name", func() {
			Expect(exec("", "-o")).To(Equal(2))
			Expect(stderr.String()).To(ContainSubstring("missing argument to -o"))
		})
	})

	Describe("output file", func() {
		var dir string

		BeforeEach(func() {
			var err error
			dir, err = os.MkdirTemp("", "stdinlines")
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			os.RemoveAll(dir)
		})

		It("writes to the file given with -o", func() {
			out := filepath.Join(dir, "out.txt")
			Expect(exec("a\nb", "-o", out)).To(Equal(0))
			Expect(stdout.Len()).To(BeZero())

			b, err := os.ReadFile(out)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(b)).To(Equal("a\nb\n"))
		})

		It("leaves an existing output file alone when the first input is missing", func() {
			out := filepath.Join(dir, "out.txt")
			Expect(os.WriteFile(out, []byte("keep\n"), 0o644)).To(Succeed())

			Expect(exec("", "testdata/missing.txt", "-o", out)).To(Equal(1))

			b, err := os.ReadFile(out)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(b)).To(Equal("keep\n"))
		})

		It("creates an empty output file for empty input", func() {
			out := filepath.Join(dir, "out.txt")
			Expect(os.WriteFile(out, []byte("old\n"), 0o644)).To(Succeed())

			Expect(exec("", "-o", out)).To(Equal(0))

			b, err := os.ReadFile(out)
			Expect(err).NotTo(HaveOccurred())
			Expect(b).To(BeEmpty())
		})

		It("reports an output file that cannot be created", func() {
			out := filepath.Join(dir, "no", "such", "dir", "out.txt")
			Expect(exec("a\n", "-o", out)).To(Equal(1))
			Expect(stderr.String()).To(ContainSubstring("writing output"))
		})

		It("treats -o - as stdout", func() {
			Expect(exec("a", "-o", "-")).To(Equal(0))
			Expect(stdout.String()).To(Equal("a\n"))
		})
	})

	Describe("configuration", func() {
		It("applies the config file", func() {
			Expect(exec("a\nb", "--config", "testdata/config.yaml")).To(Equal(0))
			Expect(stdout.String()).To(Equal("     1\ta\n     2\tb"))
		})

		It("reads the config file named by the environment", func() {
			Expect(os.Setenv(configEnv, "testdata/config.yaml")).To(Succeed())
			Expect(exec("a\n")).To(Equal(0))
			Expect(stdout.String()).To(Equal("     1\ta\n"))
		})

		It("lets flags override the config file", func() {
			Expect(exec("a\nb", "--config", "testdata/config.yaml", "-c")).To(Equal(0))
			Expect(stdout.String()).To(Equal("2\n"))
		})

		It("rejects unknown keys", func() {
			Expect(exec("a", "--config", "testdata/unknown.yaml")).To(Equal(2))
			Expect(stdout.Len()).To(BeZero())
		})

		It("rejects a bad terminator", func() {
			Expect(exec("a", "--config", "testdata/badterm.yaml")).To(Equal(2))
		})

		It("fails on a missing config file", func() {
			Expect(exec("a", "--config", "testdata/nope.yaml")).To(Equal(2))
		})
	})

	Describe("help and version", func() {
		It("prints usage", func() {
			Expect(exec("", "-h")).To(Equal(0))
			Expect(stdout.String()).To(HavePrefix("Usage: stdinlines"))
		})

		It("prints the version", func() {
			Expect(exec("", "--version")).To(Equal(0))
			Expect(stdout.String()).To(Equal("stdinlines v" + VERSION + "\n"))
		})
	})
})

var _ = Describe("parseArguments", func() {
	It("defaults to stdin", func() {
		cl, err := parseArguments(nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(cl.inputs).To(Equal([]string{"-"}))
	})

	It("mixes flags and file names", func() {
		cl, err := parseArguments([]string{"a.txt", "-v", "-", "--config", "c.yaml", "b.txt"})
		Expect(err).NotTo(HaveOccurred())
		Expect(cl.inputs).To(Equal([]string{"a.txt", "-", "b.txt"}))
		Expect(cl.verbose).To(BeTrue())
		Expect(cl.configFile).To(Equal("c.yaml"))
	})

	It("applies overrides in order", func() {
		cl, err := parseArguments([]string{"-o", "x", "-r", "-o", "y"})
		Expect(err).NotTo(HaveOccurred())
		cfg := defaultConfig()
		for _, f := range cl.overrides {
			f(cfg)
		}
		Expect(cfg.Output).To(Equal("y"))
		Expect(cfg.Mode).To(Equal("raw"))
	})
})
