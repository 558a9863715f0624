package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distsched/distsched/internal/model"
)

type fakeClock struct{ offset int64 }

func (c fakeClock) SimMs(wallMs int64) int64 { return wallMs + c.offset }

func TestRRPolicy_BuildDispatch_CapsSliceAtQuantum(t *testing.T) {
	p := New(model.RR, 10)
	job := &model.Job{JobID: "a", ServiceMs: 35, RemainingMs: 35}

	d := p.BuildDispatch(job)

	assert.Equal(t, int64(10), d.SliceMs)
	assert.Equal(t, int64(35), d.RemainingMs)
}

func TestRRPolicy_BuildDispatch_LastSliceIsShorterThanQuantum(t *testing.T) {
	p := New(model.RR, 10)
	job := &model.Job{JobID: "a", ServiceMs: 35, RemainingMs: 4}

	d := p.BuildDispatch(job)

	assert.Equal(t, int64(4), d.SliceMs)
}

func TestRRPolicy_Complete_RequeuesWhenWorkRemains(t *testing.T) {
	p := New(model.RR, 10)
	job := &model.Job{JobID: "a", ServiceMs: 35, RemainingMs: 35}

	finished := p.Complete(job, model.CompletionReport{
		FinishedWallMs:   1000,
		RemainingAfterMs: 25,
	}, fakeClock{})

	assert.False(t, finished)
	assert.Equal(t, int64(25), job.RemainingMs)
	assert.Equal(t, 1, job.Slices)
	assert.Equal(t, 1, job.Preemptions)
	assert.Nil(t, job.FinishMs)
}

func TestRRPolicy_Complete_FinishesWhenNoWorkRemains(t *testing.T) {
	p := New(model.RR, 10)
	job := &model.Job{JobID: "a", ServiceMs: 35, RemainingMs: 5}

	finished := p.Complete(job, model.CompletionReport{
		FinishedWallMs:   1000,
		RemainingAfterMs: 0,
	}, fakeClock{offset: 5})

	require.True(t, finished)
	require.NotNil(t, job.FinishMs)
	assert.Equal(t, int64(1005), *job.FinishMs)
	assert.Equal(t, 0, job.Preemptions)
	assert.Equal(t, 1, job.Slices)
}

func TestRRPolicy_RequeueGoesToTail(t *testing.T) {
	p := New(model.RR, 10)
	a := &model.Job{JobID: "a", ServiceMs: 30, RemainingMs: 30}
	b := &model.Job{JobID: "b", ServiceMs: 5, RemainingMs: 5}
	p.Push(a)
	p.Push(b)

	id, ok := p.Pop()
	require.True(t, ok)
	assert.Equal(t, "a", id)

	p.Complete(a, model.CompletionReport{RemainingAfterMs: 20}, fakeClock{})
	p.Push(a)

	id, ok = p.Pop()
	require.True(t, ok)
	assert.Equal(t, "b", id)

	id, ok = p.Pop()
	require.True(t, ok)
	assert.Equal(t, "a", id)
}
