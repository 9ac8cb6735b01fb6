package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/planboard/internal/common"
	"github.com/dmitrijs2005/planboard/internal/server/models"
)

func TestTaskService(t *testing.T) {
	e := newEnv(t)
	tasks := e.svc.Tasks

	assert.ErrorIs(t, tasks.Create(viewer, "t1", models.Task{"start": "2024-01-01"}), common.ErrorForbidden)
	assert.ErrorIs(t, tasks.Create(user, " ", models.Task{}), common.ErrorValidation)

	require.NoError(t, tasks.Create(user, "t1", models.Task{"start": "2024-01-01", "label": "Unload"}))
	require.NoError(t, tasks.Create(admin, "t2", models.Task{"id": "custom", "start": "2023-01-01"}))

	got, err := tasks.List(viewer)
	require.NoError(t, err)
	assert.Equal(t, models.Task{"id": "t1", "start": "2024-01-01", "label": "Unload"}, got["t1"])
	assert.NotContains(t, got, "t2", "tasks older than the retention window expire")

	updated, err := tasks.Update(user, "t1", models.Task{"label": "Load"})
	require.NoError(t, err)
	assert.Equal(t, "Load", updated["label"])
	assert.Equal(t, "2024-01-01", updated["start"])

	_, err = tasks.Update(user, "missing", models.Task{"label": "x"})
	assert.ErrorIs(t, err, common.ErrorNotFound)

	require.NoError(t, tasks.Delete(user, "t1"))
	require.NoError(t, tasks.Delete(user, "t1"), "deleting twice is a no-op")

	_, err = tasks.List(nobody)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}
