package shared

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestBaseAggregateRoot(t *testing.T) {
	root := NewBaseAggregateRoot()
	assert.NotEqual(t, uuid.Nil, root.ID)
	assert.Equal(t, 1, root.GetVersion())
	assert.Empty(t, root.GetDomainEvents())

	root.IncrementVersion()
	assert.Equal(t, 2, root.GetVersion())

	evt := NewBaseDomainEvent("Changed", "Thing", root.ID)
	root.AddDomainEvent(&evt)
	events := root.GetDomainEvents()
	if assert.Len(t, events, 1) {
		assert.Equal(t, "Changed", events[0].EventType())
		assert.Equal(t, root.ID, events[0].AggregateID())
		assert.False(t, events[0].OccurredAt().IsZero())
	}

	root.ClearDomainEvents()
	assert.Empty(t, root.GetDomainEvents())
}
