package prometheus

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestUploadMetrics(t *testing.T) {
	m := NewUploadMetrics()
	before := testutil.ToFloat64(uploadsTotal.WithLabelValues("processed"))

	m.ObserveUpload("processed")
	m.ObserveUpload("processed")
	m.ObserveProcessing(0.2)

	assert.Equal(t, before+2, testutil.ToFloat64(uploadsTotal.WithLabelValues("processed")))
	assert.Equal(t, 1, testutil.CollectAndCount(processingDuration))
}
