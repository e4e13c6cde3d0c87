package bctest

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/levinine/browserconnector/framework"
)

func TestTestScopeInheritsConfiguration(t *testing.T) {
	myContextValue := "hi"
	myFeatures := framework.Features{"a", "b"}
	config := TestConfiguration{
		Context:  myContextValue,
		Features: myFeatures,
	}
	_ = Run(config, func(bct *T) {
		assert.Equal(t, myContextValue, bct.Context())
		assert.Equal(t, myFeatures, bct.Features())

		bct.Run("subtest", func(bct1 *T) {
			assert.Equal(t, myContextValue, bct1.Context())
			assert.Equal(t, myFeatures, bct1.Features())
		})
	})
}

func TestTestScopeEndsAtFailNowOrSkip(t *testing.T) {
	for name, stop := range map[string]func(*T){
		"FailNow": (*T).FailNow,
		"Skip":    (*T).Skip,
	} {
		t.Run(name, func(t *testing.T) {
			var reached []string
			_ = Run(TestConfiguration{}, func(bct *T) {
				bct.Run("sub", func(bct1 *T) {
					reached = append(reached, "before")
					stop(bct1)
					reached = append(reached, "after")
				})
				reached = append(reached, "parent")
			})
			assert.Equal(t, []string{"before", "parent"}, reached)
		})
	}
}

func testIDs(results []TestResult) []TestID {
	ids := make([]TestID, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.TestID)
	}
	return ids
}

func TestTestScopeResultsListSubtestsBeforeParents(t *testing.T) {
	result := Run(TestConfiguration{}, func(bct *T) {
		bct.Run("redirects", func(bct1 *T) {
			bct1.Run("302", func(*T) {})
			bct1.Run("303", func(*T) {})
		})
	})

	assert.True(t, result.OK())
	assert.Empty(t, result.Failures)
	assert.Equal(t, []TestID{{"redirects", "302"}, {"redirects", "303"}, {"redirects"}, nil}, testIDs(result.Tests))
	for _, r := range result.Tests {
		assert.False(t, r.Failed())
	}
}

func TestTestScopeFailureDoesNotPropagateToParent(t *testing.T) {
	result := Run(TestConfiguration{}, func(bct *T) {
		bct.Run("cookies", func(bct1 *T) {
			bct1.Run("set", func(*T) {})
			bct1.Run("clear", func(bct2 *T) {
				bct2.Errorf("expected %s", "no cookie")
				bct2.Errorf("and a redirect")
			})
		})
		bct.Run("forms", func(bct1 *T) {
			bct1.Errorf("form failed")
		})
	})

	assert.False(t, result.OK())
	assert.Equal(t, []TestID{{"cookies", "clear"}, {"forms"}}, testIDs(result.Failures))
	failed := result.Failures[0]
	require.Len(t, failed.Errors, 2)
	assert.Equal(t, "expected no cookie", failed.Errors[0].Error())
	assert.Equal(t, "and a redirect", failed.Errors[1].Error())
	assert.False(t, result.Tests[2].Failed(), "parent of a failed subtest")
}

func TestTestScopeSkippedTestsAreNotInTests(t *testing.T) {
	result := Run(TestConfiguration{}, func(bct *T) {
		bct.Run("uploads", func(bct1 *T) {
			bct1.Run("plain", func(bct2 *T) { bct2.Skip() })
			bct1.Run("reason", func(bct2 *T) { bct2.SkipWithReason("why not") })
		})
	})

	assert.True(t, result.OK())
	assert.Equal(t, []TestID{{"uploads"}, nil}, testIDs(result.Tests))
	assert.Equal(t, []TestID{{"uploads", "plain"}, {"uploads", "reason"}}, result.Skipped)
}

func TestTestScopeFilter(t *testing.T) {
	filter := FilterFunc(func(id TestID) bool { return id.Group() == "b" })

	result := Run(TestConfiguration{Filter: filter}, func(bct *T) {
		for _, group := range []string{"a", "b"} {
			bct.Run(group, func(bct1 *T) {
				bct1.Run("one", func(*T) {})
				bct1.Run("two", func(*T) {})
			})
		}
	})

	assert.True(t, result.OK())
	assert.Equal(t, []TestID{{"b", "one"}, {"b", "two"}, {"b"}, nil}, testIDs(result.Tests))
	assert.Equal(t, []TestID{{"a"}}, result.Skipped)
}

func TestTestScopeRequireFeature(t *testing.T) {
	result := Run(TestConfiguration{Features: []string{"uploads"}}, func(bct *T) {
		bct.Run("has it", func(bct1 *T) {
			bct1.RequireFeature("uploads")
		})
		bct.Run("lacks it", func(bct1 *T) {
			bct1.RequireFeature("events")
			bct1.Errorf("should not get here")
		})
	})

	assert.True(t, result.OK())
	assert.Equal(t, []TestID{{"lacks it"}}, result.Skipped)
}

func TestTestScopeUnexpectedPanic(t *testing.T) {
	result := Run(TestConfiguration{}, func(bct *T) {
		bct.Run("panics", func(*T) {
			panic("boom")
		})
	})

	require.Len(t, result.Failures, 1)
	require.Len(t, result.Failures[0].Errors, 1)
	assert.Contains(t, result.Failures[0].Errors[0].Error(), "unexpected panic in test: boom")
}

func TestTestScopeCleanupsRunInReverseOrder(t *testing.T) {
	var calls []string
	_ = Run(TestConfiguration{}, func(bct *T) {
		bct.Run("", func(bct1 *T) {
			bct1.Defer(func() { calls = append(calls, "first") })
			bct1.Defer(func() { calls = append(calls, "second") })
			bct1.FailNow()
		})
	})
	assert.Equal(t, []string{"second", "first"}, calls)
}

func TestTestScopeCleanupsRunWhenSkipped(t *testing.T) {
	cleaned := false
	result := Run(TestConfiguration{}, func(bct *T) {
		bct.Run("skipped", func(bct1 *T) {
			bct1.Defer(func() { cleaned = true })
			bct1.SkipWithReason("no")
		})
	})
	assert.True(t, cleaned)
	assert.Equal(t, []TestID{{"skipped"}}, result.Skipped)
}

func TestTestScopeFailNowWithoutMessage(t *testing.T) {
	result := Run(TestConfiguration{}, func(bct *T) {
		bct.Run("silent", func(bct1 *T) {
			bct1.FailNow()
		})
	})
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "test failed with no failure message", result.Failures[0].Errors[0].Error())
}

func TestTestScopeRecordsDuration(t *testing.T) {
	result := Run(TestConfiguration{}, func(bct *T) {
		bct.Run("slow", func(*T) {
			time.Sleep(10 * time.Millisecond)
		})
	})
	assert.GreaterOrEqual(t, result.Tests[0].Duration, 10*time.Millisecond)
}

func TestTestScopeHelperIsLeftOutOfTrace(t *testing.T) {
	result := Run(TestConfiguration{}, func(bct *T) {
		bct.Run("with helper", func(bct1 *T) {
			failingHelper(bct1)
		})
	})
	require.Len(t, result.Failures, 1)
	var failure Failure
	require.True(t, errors.As(result.Failures[0].Errors[0], &failure))
	for _, frame := range failure.Trace {
		assert.NotEqual(t, "failingHelper", frame.Function)
	}
}

func failingHelper(t *T) {
	t.Helper()
	t.Errorf("helper failed")
}

func TestDebugOutputIsPassedToTestLogger(t *testing.T) {
	logger := &recordingTestLogger{}
	_ = Run(TestConfiguration{TestLogger: logger}, func(bct *T) {
		bct.Run("sub", func(bct1 *T) {
			bct1.Debug("message %d", 1)
		})
	})
	require.Len(t, logger.finished, 1)
	assert.Equal(t, "message 1", logger.finished[0].Message)
}

type recordingTestLogger struct {
	nullTestLogger
	finished framework.CapturedOutput
}

func (r *recordingTestLogger) TestFinished(id TestID, result TestResult, output framework.CapturedOutput) {
	r.finished = append(r.finished, output...)
}
