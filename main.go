package main

import (
	_ "embed" // this is required in order for go:embed to work
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/levinine/browserconnector/config"
	"github.com/levinine/browserconnector/connector"
	"github.com/levinine/browserconnector/exampleapp"
	"github.com/levinine/browserconnector/framework"
	"github.com/levinine/browserconnector/framework/bctest"
	"github.com/levinine/browserconnector/message"
	"github.com/levinine/browserconnector/module"
	"github.com/levinine/browserconnector/scenarios"
	"github.com/levinine/browserconnector/suite"
	"github.com/levinine/browserconnector/webapp"
)

//go:embed VERSION
var versionString string

func main() {
	fmt.Printf("browserconnector v%s\n", strings.TrimSpace(versionString))

	var params commandParams
	if !params.Read(os.Args) {
		os.Exit(1)
	}

	if params.serveAddr != "" {
		if err := serve(params); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	results, err := run(params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if !results.OK() {
		failed := make([]bctest.TestID, 0, len(results.Failures))
		for _, f := range results.Failures {
			failed = append(failed, f.TestID)
		}
		fmt.Println()
		fmt.Println("To run only the failed tests:")
		fmt.Println("  " + rerunCommand(os.Args[0], params, failed))
		os.Exit(1)
	}
}

func loadConfig(params commandParams) (config.Config, error) {
	if params.configFile == "" {
		return config.Default(), nil
	}
	return config.Load(params.configFile)
}

func makeEmitter(mode config.EmitMode) webapp.Emitter {
	switch mode {
	case config.EmitStdout:
		return webapp.NewResponseEmitter(os.Stdout)
	case config.EmitDebug:
		logger := log.New(os.Stderr, "[emit] ", log.LstdFlags)
		return webapp.EmitterFunc(func(resp message.Response) error {
			logger.Printf("%d %s, %d bytes", resp.StatusCode(), resp.HeaderLine("Content-Type"), resp.Body().Size())
			return nil
		})
	default:
		return webapp.EmitterFunc(func(message.Response) error { return nil })
	}
}

func loadScenarios(params commandParams) ([]scenarios.SourceInfo, error) {
	var ret []scenarios.SourceInfo
	if !params.noBuiltIn {
		sources, err := scenarios.LoadBuiltIn()
		if err != nil {
			return nil, err
		}
		ret = append(ret, sources...)
	}
	for _, dir := range params.scenarioDirs {
		sources, err := scenarios.LoadDir(os.DirFS(dir), ".")
		if err != nil {
			return nil, fmt.Errorf("cannot load scenarios from %s: %w", dir, err)
		}
		ret = append(ret, sources...)
	}
	return ret, nil
}

func run(params commandParams) (*bctest.Results, error) {
	if params.skipFile != "" {
		if err := loadSuppressions(&params); err != nil {
			return nil, err
		}
	}

	cfg, err := loadConfig(params)
	if err != nil {
		return nil, err
	}

	mainDebugLogger := framework.NullLogger()
	if params.debugAll {
		mainDebugLogger = log.New(os.Stdout, "", log.LstdFlags)
	}

	registry := prometheus.NewRegistry()
	var metrics *connector.Metrics
	if cfg.Metrics {
		if metrics, err = connector.NewMetrics(registry); err != nil {
			return nil, err
		}
	}

	sources, err := loadScenarios(params)
	if err != nil {
		return nil, err
	}

	features := cfg.Features
	if len(features) == 0 {
		features = suite.AllFeatures()
	}

	moduleConfig := module.Config{
		BaseURI:      cfg.BaseURI,
		MaxRedirects: cfg.MaxRedirects.OrElse(0),
		Server:       cfg.Server,
		Emitter:      makeEmitter(cfg.Emit),
		Metrics:      metrics,
	}
	uploadDir, err := os.MkdirTemp("", "browserconnector-uploads")
	if err != nil {
		return nil, err
	}
	defer func() { _ = os.RemoveAll(uploadDir) }()
	appOptions := exampleapp.Options{UploadDir: uploadDir, DisplayErrorDetails: true, Logger: mainDebugLogger}

	env := suite.Environment{
		NewFramework: func() (*module.Framework, error) {
			f := module.NewFramework(moduleConfig)
			return f, f.Initialize(exampleapp.Bootstrap(appOptions))
		},
		Features:  features,
		Scenarios: sources,
	}

	fmt.Printf("Running test suite for %s\n", cfg.App)
	fmt.Println()
	bctest.PrintFilterDescription(params.filters, suite.AllFeatures(), features)

	consoleLogger := bctest.ConsoleTestLogger{
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}
	testLogger := bctest.MultiTestLogger{consoleLogger}
	if params.jUnitFile != "" {
		testLogger = append(testLogger,
			bctest.NewJUnitTestLogger(params.jUnitFile, cfg.App, cfg.Properties, params.filters))
	}

	results := suite.Run(env, params.filters, testLogger)

	fmt.Println()
	logErr := testLogger.EndLog(results)
	bctest.PrintResults(results)
	if metrics != nil {
		fmt.Println()
		if err := printMetricsSummary(os.Stdout, registry); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot read metrics: %s\n", err)
		}
	}
	if logErr != nil {
		return nil, fmt.Errorf("cannot write test log: %w", logErr)
	}

	if params.recordFailures != "" {
		if err := writeFailures(params.recordFailures, results.Failures); err != nil {
			return nil, err
		}
	}

	return &results, nil
}

// loadSuppressions adds each non-blank line of the skip file to the -skip patterns, matching
// that test ID literally.
func loadSuppressions(params *commandParams) error {
	data, err := os.ReadFile(params.skipFile)
	if err != nil {
		return fmt.Errorf("cannot read suppression file: %w", err)
	}
	for n, line := range strings.Split(string(data), "\n") {
		id := strings.TrimSpace(line)
		if id == "" {
			continue
		}
		if err := params.filters.MustNotMatch.Set(regexp.QuoteMeta(id)); err != nil {
			return fmt.Errorf("suppression file line %d: %w", n+1, err)
		}
	}
	return nil
}

// writeFailures writes one failed test ID per line, in the format loadSuppressions reads.
func writeFailures(path string, failures []bctest.TestResult) error {
	var b strings.Builder
	for _, f := range failures {
		b.WriteString(f.TestID.String())
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("cannot write failed test IDs: %w", err)
	}
	return nil
}
