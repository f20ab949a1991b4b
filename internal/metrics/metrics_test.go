package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)
	require.NotNil(t, m)

	m.CSVFilesLoaded.Add(3)
	m.DatasetsLoaded.Inc()
	m.DatasetsTrained.Inc()
	m.SkipsNoTimestamp.Inc()
	m.LastRunDatasets.Set(2)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.CSVFilesLoaded))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DatasetsLoaded))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DatasetsTrained))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SkipsNoTimestamp))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.SkipsNoTarget))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.LastRunDatasets))
}

func TestEpochLossObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.EpochLossObserve(0.5)
	m.EpochLossObserve(0.25)

	count := testutil.CollectAndCount(m.EpochLoss, "training_epoch_loss")
	assert.Equal(t, 1, count)

	families, err := reg.Gather()
	require.NoError(t, err)
	for _, fam := range families {
		if fam.GetName() == "training_epoch_loss" {
			require.Len(t, fam.GetMetric(), 1)
			assert.Equal(t, uint64(2), fam.GetMetric()[0].GetHistogram().GetSampleCount())
			return
		}
	}
	t.Fatal("training_epoch_loss not gathered")
}
