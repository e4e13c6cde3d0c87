package bctest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/levinine/browserconnector/framework/bctest/internal"
)

func TestCallerTrace(t *testing.T) {
	_ = Run(TestConfiguration{}, func(bct *T) {
		bct.Run("including runner", func(*T) {
			trace := callerTrace(true, nil)
			require.Greater(t, len(trace), 1)
			assert.Equal(t, runnerPackage, trace[0].Package)
			assert.Contains(t, trace[0].Function, "TestCallerTrace.")
			assert.Equal(t, "(*T).run", trace[1].Function)
		})

		bct.Run("runner frames are dropped", func(*T) {
			internal.RunAction(func() {
				trace := callerTrace(false, nil)
				require.Len(t, trace, 1)
				assert.Equal(t, runnerPackage+"/internal", trace[0].Package)
				assert.Equal(t, "RunAction", trace[0].Function)
			})
		})

		bct.Run("helpers are dropped", func(*T) {
			outerHelper(func() {
				innerHelper(func() {
					trace := callerTrace(true, map[string]bool{runnerPackage + ".innerHelper": true})
					var functions []string
					for _, f := range trace {
						functions = append(functions, f.Function)
					}
					assert.Contains(t, functions, "outerHelper")
					assert.NotContains(t, functions, "innerHelper")
				})
			})
		})
	})
}

func TestSplitFunctionName(t *testing.T) {
	pkg, fn := splitFunctionName("github.com/levinine/browserconnector/framework/bctest.(*T).Run")
	assert.Equal(t, "github.com/levinine/browserconnector/framework/bctest", pkg)
	assert.Equal(t, "(*T).Run", fn)

	pkg, fn = splitFunctionName("main.main")
	assert.Equal(t, "main", pkg)
	assert.Equal(t, "main", fn)
}

func TestNewFailureStripsTestifyTrace(t *testing.T) {
	err := newFailure(errors.New("\n\tError Trace:\tsuite.go:10\n\tError:      \tNot equal"), nil)
	assert.Equal(t, "Not equal", err.Error())

	trace := []Frame{{Package: modulePath + "/suite", Function: "doPageTests", File: "pages.go", Line: 12}}
	err = newFailure(errors.New("expected 200"), trace)
	var failure Failure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, "suite.doPageTests (pages.go:12)", failure.Trace[0].String())
}

func outerHelper(action func()) {
	action()
}

func innerHelper(action func()) {
	action()
}
