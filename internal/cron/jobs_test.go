package cron

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/shopadmin/internal/testdb"
	"github.com/angelmondragon/shopadmin/pkg/db/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jobNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func TestResetPurgeJobDeletesExpiredAndUsedCodes(t *testing.T) {
	gdb := testdb.Gorm(t)
	used := jobNow.Add(-48 * time.Hour)
	recentUse := jobNow.Add(-time.Hour)
	rows := []models.PasswordReset{
		{Email: "a@shop.local", CodeHash: "h1", ExpiresAt: jobNow.Add(-30 * time.Hour)},
		{Email: "b@shop.local", CodeHash: "h2", ExpiresAt: jobNow.Add(time.Hour)},
		{Email: "c@shop.local", CodeHash: "h3", ExpiresAt: jobNow.Add(time.Hour), UsedAt: &used},
		{Email: "d@shop.local", CodeHash: "h4", ExpiresAt: jobNow.Add(time.Hour), UsedAt: &recentUse},
	}
	require.NoError(t, gdb.Create(&rows).Error)

	job, err := NewResetPurgeJob(gdb, 24*time.Hour, func() time.Time { return jobNow })
	require.NoError(t, err)

	deleted, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	var left []models.PasswordReset
	require.NoError(t, gdb.Order("email").Find(&left).Error)
	require.Len(t, left, 2)
	assert.Equal(t, "b@shop.local", left[0].Email)
	assert.Equal(t, "d@shop.local", left[1].Email)
}

func TestSessionCloseJobClosesOnlyStaleOpenSessions(t *testing.T) {
	gdb := testdb.Gorm(t)
	user := models.User{FirstName: "Ana", LastName: "Diaz", Email: "ana@shop.local", PasswordHash: "x"}
	require.NoError(t, gdb.Create(&user).Error)

	closed := jobNow.Add(-20 * time.Hour)
	sessions := []models.UserSession{
		{UserID: user.ID, LoginTime: jobNow.Add(-30 * time.Hour)},
		{UserID: user.ID, LoginTime: jobNow.Add(-time.Hour)},
		{UserID: user.ID, LoginTime: jobNow.Add(-40 * time.Hour), LogoutTime: &closed},
	}
	require.NoError(t, gdb.Create(&sessions).Error)

	job, err := NewSessionCloseJob(gdb, 8*time.Hour, func() time.Time { return jobNow })
	require.NoError(t, err)

	n, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	var stale, fresh, old models.UserSession
	require.NoError(t, gdb.First(&stale, sessions[0].ID).Error)
	require.NoError(t, gdb.First(&fresh, sessions[1].ID).Error)
	require.NoError(t, gdb.First(&old, sessions[2].ID).Error)
	require.NotNil(t, stale.LogoutTime)
	assert.True(t, stale.LogoutTime.Equal(jobNow))
	assert.Nil(t, fresh.LogoutTime)
	assert.True(t, old.LogoutTime.Equal(closed))
}

func TestJobConstructorsValidate(t *testing.T) {
	_, err := NewResetPurgeJob(nil, time.Hour, nil)
	assert.Error(t, err)
	_, err = NewSessionCloseJob(testdb.Gorm(t), 0, nil)
	assert.Error(t, err)
}
