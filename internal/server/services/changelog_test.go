package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/planboard/internal/common"
	"github.com/dmitrijs2005/planboard/internal/server/models"
)

func TestChangeLogService(t *testing.T) {
	e := newEnv(t)
	log := e.svc.ChangeLog

	_, err := log.Append(nobody, models.ChangeEntry{"action": "x"})
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	ok, err := log.Append(viewer, models.ChangeEntry{"action": "opened schedule", "type": "view"})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = log.Append(user, models.ChangeEntry{"action": "moved task"})
	require.NoError(t, err)
	assert.True(t, ok)

	entries, err := log.List(viewer)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "user", entries[0]["user"])
	assert.Equal(t, "2024.01.01 10:00:00", entries[0]["dateTime"])
}
