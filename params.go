package main

import (
	"flag"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/alessio/shellescape"

	"github.com/levinine/browserconnector/framework/bctest"
)

type commandParams struct {
	configFile     string
	filters        bctest.RegexFilters
	scenarioDirs   stringList
	noBuiltIn      bool
	debug          bool
	debugAll       bool
	jUnitFile      string
	skipFile       string
	recordFailures string
	serveAddr      string
}

type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(value string) error {
	*l = append(*l, value)
	return nil
}

func (c *commandParams) Read(args []string) bool {
	fs := flag.NewFlagSet("", flag.ExitOnError)
	fs.StringVar(&c.configFile, "config", "", "YAML or JSON settings file")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.Var(&c.scenarioDirs, "scenarios", "directory of additional scenario files (can be repeated)")
	fs.BoolVar(&c.noBuiltIn, "no-builtin-scenarios", false, "do not run the built-in scenarios")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all tests")
	fs.StringVar(&c.jUnitFile, "junit", "", "write JUnit XML output to the specified path")
	fs.StringVar(&c.skipFile, "skip-from", "", "file of test IDs to skip, one per line")
	fs.StringVar(&c.recordFailures, "record-failures", "", "write the IDs of failed tests to the specified path")
	fs.StringVar(&c.serveAddr, "serve", "", "serve the example application over HTTP at this address instead of running tests")

	if err := fs.Parse(args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		return false
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		fs.Usage()
		return false
	}
	return true
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}

// rerunCommand builds a command line that runs only the given tests, with the same settings.
func rerunCommand(program string, params commandParams, failed []bctest.TestID) string {
	var cmd commandBuilder
	cmd.add(program)
	if params.configFile != "" {
		cmd.add("-config", params.configFile)
	}
	for _, dir := range params.scenarioDirs {
		cmd.add("-scenarios", dir)
	}
	if params.noBuiltIn {
		cmd.add("-no-builtin-scenarios")
	}
	for _, id := range failed {
		cmd.add("-run", exactPattern(id))
	}
	cmd.add("-debug")
	return cmd.String()
}

// exactPattern returns a -run pattern that matches only the given test and its subtests. A
// slash inside a test name is matched by any character, since slashes separate the levels.
func exactPattern(id bctest.TestID) string {
	parts := make([]string, 0, len(id))
	for _, name := range id {
		parts = append(parts, "^"+strings.ReplaceAll(regexp.QuoteMeta(name), "/", ".")+"$")
	}
	return strings.Join(parts, "/")
}
