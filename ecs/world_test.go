package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSystem struct {
	calls int
	dt    float64
}

func (s *countingSystem) Update(_ *World, dt float64) {
	s.calls++
	s.dt += dt
}

func TestWorldUpdateRunsSystems(t *testing.T) {
	w := NewWorld(4)
	a, b := &countingSystem{}, &countingSystem{}
	w.AddSystem(a)
	w.AddSystem(b)

	w.Update(0.5)
	w.Update(0.25)

	assert.Equal(t, 2, a.calls)
	assert.Equal(t, 0.75, b.dt)
	assert.Len(t, w.Systems(), 2)
}

func TestWorldEmitsLifecycleEvents(t *testing.T) {
	w := NewWorld(4)
	var events []EntityEvent
	record := func(ev Event) { events = append(events, ev.(EntityEvent)) }
	created := w.Events().Subscribe(EventEntityCreated, record)
	w.Events().Subscribe(EventEntityDestroyed, record)

	e, err := w.CreateEntity()
	require.NoError(t, err)
	require.NoError(t, w.DestroyEntity(e))
	assert.Error(t, w.DestroyEntity(e))

	require.Len(t, events, 2)
	assert.Equal(t, EventEntityCreated, events[0].Kind)
	assert.Equal(t, EventEntityDestroyed, events[1].Kind)
	assert.Equal(t, e, events[1].Entity)

	w.Events().Unsubscribe(created)
	_, err = w.CreateEntity()
	require.NoError(t, err)
	assert.Len(t, events, 2)
}
