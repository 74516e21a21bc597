package attr

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCorrelationID(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "req-42")
	assert.Equal(t, "req-42", CorrelationIDFromContext(ctx))
	assert.Equal(t, "req-42", ExtractCorrelationID(ctx).Value.String())
	assert.Equal(t, "", CorrelationIDFromContext(context.Background()))
}

func TestError(t *testing.T) {
	assert.Equal(t, "boom", Error(errors.New("boom")).Value.String())
	assert.Equal(t, "", Error(nil).Value.String())
}

func TestUUID(t *testing.T) {
	id := uuid.New()
	a := UUID("player_id", id)
	assert.Equal(t, "player_id", a.Key)
	assert.Equal(t, id.String(), a.Value.String())
}
