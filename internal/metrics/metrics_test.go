package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordOperation(t *testing.T) {
	before := testutil.ToFloat64(operationsTotal.WithLabelValues("grading", "grade_card", "already-graded"))
	RecordOperation("grading", "grade_card", "already-graded")
	after := testutil.ToFloat64(operationsTotal.WithLabelValues("grading", "grade_card", "already-graded"))
	if after-before != 1 {
		t.Errorf("expected counter to grow by 1, grew by %v", after-before)
	}
}

func TestRecordEventPublish(t *testing.T) {
	before := testutil.ToFloat64(eventsPublishedTotal.WithLabelValues("failure"))
	RecordEventPublish(false)
	if got := testutil.ToFloat64(eventsPublishedTotal.WithLabelValues("failure")) - before; got != 1 {
		t.Errorf("failure counter grew by %v", got)
	}
}
