package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"time"

	"github.com/angelmondragon/shopadmin/pkg/db/models"
	"github.com/angelmondragon/shopadmin/pkg/redis"
	"gorm.io/gorm"
)

// ResetCodeStore keeps hashed reset codes. Consume succeeds at most once per
// code and never after its TTL.
type ResetCodeStore interface {
	Put(ctx context.Context, email, codeHash string, ttl time.Duration) error
	Consume(ctx context.Context, email, codeHash string) (bool, error)
}

// HashResetCode returns the hex sha256 of a reset code.
func HashResetCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// DBResetCodes stores codes in the password_resets table.
type DBResetCodes struct {
	db  *gorm.DB
	now func() time.Time
}

func NewDBResetCodes(db *gorm.DB, now func() time.Time) *DBResetCodes {
	if now == nil {
		now = time.Now
	}
	return &DBResetCodes{db: db, now: now}
}

// Put invalidates earlier codes for the email and stores the new one.
func (s *DBResetCodes) Put(ctx context.Context, email, codeHash string, ttl time.Duration) error {
	now := s.now().UTC()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.PasswordReset{}).
			Where("email = ? AND used_at IS NULL", email).
			Update("used_at", now).Error; err != nil {
			return err
		}
		return tx.Create(&models.PasswordReset{
			Email:     email,
			CodeHash:  codeHash,
			ExpiresAt: now.Add(ttl),
		}).Error
	})
}

func (s *DBResetCodes) Consume(ctx context.Context, email, codeHash string) (bool, error) {
	now := s.now().UTC()
	var consumed bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.PasswordReset
		err := tx.Where("email = ? AND used_at IS NULL AND expires_at > ?", email, now).
			Order("id DESC").
			First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if subtle.ConstantTimeCompare([]byte(row.CodeHash), []byte(codeHash)) != 1 {
			return nil
		}
		consumed = true
		return tx.Model(&row).Update("used_at", now).Error
	})
	return consumed, err
}

type codeCache interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Take(ctx context.Context, key string) (string, error)
	ResetCodeKey(email string) string
}

// RedisResetCodes stores codes under a TTL key; the key is deleted on the
// first consume attempt, so a wrong guess burns the code.
type RedisResetCodes struct {
	cache codeCache
}

func NewRedisResetCodes(client *redis.Client) *RedisResetCodes {
	return &RedisResetCodes{cache: client}
}

func (s *RedisResetCodes) Put(ctx context.Context, email, codeHash string, ttl time.Duration) error {
	return s.cache.Set(ctx, s.cache.ResetCodeKey(email), codeHash, ttl)
}

func (s *RedisResetCodes) Consume(ctx context.Context, email, codeHash string) (bool, error) {
	stored, err := s.cache.Take(ctx, s.cache.ResetCodeKey(email))
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(codeHash)) == 1, nil
}
