package stats_test

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archfab/fabricsim/stats"
)

func TestMessageLog_RecordsLifecycle(t *testing.T) {
	sink := stats.NewHookable()
	rec := stats.NewRecorder()
	sink.AcceptHook(rec)

	log := stats.NewMessageLog(sink)
	log.StartTransaction(7)
	log.LogMessage(7, 1, 2, 4)
	log.EndTransaction(7)

	require.Len(t, rec.Started, 1)
	assert.Equal(t, uint64(7), rec.Started[0].TransactionID)

	require.Len(t, rec.Logged, 1)
	assert.Equal(t, 4, rec.Logged[0].SizeFlits)

	require.Len(t, rec.Ended, 1)
	assert.Equal(t, uint64(7), rec.Ended[0].TransactionID)
}

func TestTrafficLog_RecordsCrossbarTraversal(t *testing.T) {
	sink := stats.NewHookable()
	rec := stats.NewRecorder()
	sink.AcceptHook(rec)

	log := stats.NewTrafficLog(sink)
	log.Log("Router[0]", 1, 0, 2, 0, 5)

	require.Len(t, rec.Traffic, 1)
	assert.Equal(t, "Router[0]", rec.Traffic[0].Device)
	assert.Equal(t, 5, rec.Traffic[0].Flits)
}

func TestLogrusSink_DoesNotPanicOnAnyEventKind(t *testing.T) {
	sink := stats.NewHookable()
	logger := logrus.New()
	sink.AcceptHook(stats.NewLogrusSink(logger))

	log := stats.NewMessageLog(sink)
	log.StartTransaction(1)
	log.LogMessage(1, 0, 1, 2)
	log.EndTransaction(1)

	traffic := stats.NewTrafficLog(sink)
	traffic.Log("Router[0]", 0, 0, 1, 0, 2)
}
