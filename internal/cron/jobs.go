package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/shopadmin/pkg/db/models"
	"gorm.io/gorm"
)

// ResetPurgeJob deletes password reset codes that expired or were used
// before the retention window.
type ResetPurgeJob struct {
	db        *gorm.DB
	retention time.Duration
	now       func() time.Time
}

func NewResetPurgeJob(database *gorm.DB, retention time.Duration, now func() time.Time) (*ResetPurgeJob, error) {
	if database == nil {
		return nil, errors.New("database required")
	}
	if now == nil {
		now = time.Now
	}
	return &ResetPurgeJob{db: database, retention: retention, now: now}, nil
}

func (j *ResetPurgeJob) Name() string { return "reset-code-purge" }

func (j *ResetPurgeJob) Run(ctx context.Context) (int64, error) {
	cutoff := j.now().UTC().Add(-j.retention)
	result := j.db.WithContext(ctx).
		Where("expires_at < ? OR (used_at IS NOT NULL AND used_at < ?)", cutoff, cutoff).
		Delete(&models.PasswordReset{})
	if result.Error != nil {
		return 0, fmt.Errorf("purge reset codes: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// SessionCloseJob stamps a logout time on sessions that outlived the access
// token lifetime, since no token can still reference them.
type SessionCloseJob struct {
	db     *gorm.DB
	maxAge time.Duration
	now    func() time.Time
}

func NewSessionCloseJob(database *gorm.DB, maxAge time.Duration, now func() time.Time) (*SessionCloseJob, error) {
	if database == nil {
		return nil, errors.New("database required")
	}
	if maxAge <= 0 {
		return nil, errors.New("session max age must be positive")
	}
	if now == nil {
		now = time.Now
	}
	return &SessionCloseJob{db: database, maxAge: maxAge, now: now}, nil
}

func (j *SessionCloseJob) Name() string { return "stale-session-close" }

func (j *SessionCloseJob) Run(ctx context.Context) (int64, error) {
	now := j.now().UTC()
	result := j.db.WithContext(ctx).
		Model(&models.UserSession{}).
		Where("logout_time IS NULL AND login_time < ?", now.Add(-j.maxAge)).
		Update("logout_time", now)
	if result.Error != nil {
		return 0, fmt.Errorf("close stale sessions: %w", result.Error)
	}
	return result.RowsAffected, nil
}
