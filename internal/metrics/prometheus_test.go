package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestGetReturnsSingleton(t *testing.T) {
	r1 := Get()
	r2 := Get()
	assert.Same(t, r1, r2)
}

func TestRuleCounters(t *testing.T) {
	r := Get()

	before := testutil.ToFloat64(r.RulesTotal.WithLabelValues("nat", "add"))
	r.RuleAdded("nat")
	r.RuleAdded("nat")
	r.RuleRemoved("nat")

	assert.Equal(t, before+2, testutil.ToFloat64(r.RulesTotal.WithLabelValues("nat", "add")))
	assert.GreaterOrEqual(t, testutil.ToFloat64(r.RulesTotal.WithLabelValues("nat", "remove")), 1.0)
}

func TestReloadCounter(t *testing.T) {
	r := Get()

	before := testutil.ToFloat64(r.ReloadTotal.WithLabelValues("success"))
	r.ReloadTotal.WithLabelValues("success").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(r.ReloadTotal.WithLabelValues("success")))
}
