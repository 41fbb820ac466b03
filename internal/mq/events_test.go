package mq

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventEnvelopeShape(t *testing.T) {
	projectID := uuid.New()
	ev := Event{
		Type:       ProjectDeleted,
		OccurredAt: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		Data:       ProjectPayload{ProjectID: projectID, TasksDeleted: 3},
	}

	body, err := json.Marshal(ev)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, "project.deleted", decoded["type"])
	data := decoded["data"].(map[string]any)
	assert.Equal(t, projectID.String(), data["project_id"])
	assert.Equal(t, float64(3), data["tasks_deleted"])
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), TaskCreated, TaskPayload{}))
	p.Close()
}
