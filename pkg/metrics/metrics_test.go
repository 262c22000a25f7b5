package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(PromptOperations.WithLabelValues("create", "ok"))
	PromptOperations.WithLabelValues("create", Result(nil)).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(PromptOperations.WithLabelValues("create", "ok")))

	assert.Equal(t, "error", Result(errors.New("x")))
}
