package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScheduler_RejectsZeroInterval(t *testing.T) {
	_, err := NewScheduler(context.Background(), nil, 0)
	assert.Error(t, err)
}

func TestScheduler_RunNow(t *testing.T) {
	fq, fr, fd := healthyFakes()
	r, store := newTestRefresher(t, fq, fr, fd)

	s, err := NewScheduler(context.Background(), r, time.Minute)
	require.NoError(t, err)
	s.Start()
	s.RunNow()
	s.Stop()

	assert.NotEmpty(t, store.Snapshot().Prices)
	assert.Len(t, fq.got, 1)
}
