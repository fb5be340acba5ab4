package users

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/shopadmin/internal/repo"
	"github.com/angelmondragon/shopadmin/internal/resources"
	"github.com/angelmondragon/shopadmin/pkg/db/models"
	pkgerrors "github.com/angelmondragon/shopadmin/pkg/errors"
	"github.com/angelmondragon/shopadmin/pkg/pagination"
	"github.com/angelmondragon/shopadmin/pkg/types"
	"gorm.io/gorm"
)

// SessionReport lists login sessions for the admin report.
type SessionReport struct {
	table *repo.Table[models.UserSession]
}

func NewSessionReport(db *gorm.DB) *SessionReport {
	return &SessionReport{table: repo.NewTable[models.UserSession](db, repo.ListSpec{
		SortColumns: map[string]string{
			"userId":     "user_id",
			"loginTime":  "login_time",
			"logoutTime": "logout_time",
		},
		DefaultSort: "login_time",
		Preloads:    []string{"User"},
	})}
}

func (r *SessionReport) List(ctx context.Context, query pagination.Query) (*types.ListEnvelope[resources.Session], error) {
	if query.PageNumber < 1 {
		query.PageNumber = 1
	}
	query.PageSize = pagination.NormalizePageSize(query.PageSize)

	rows, total, err := r.table.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list sessions")
	}
	items := make([]resources.Session, 0, len(rows))
	for _, row := range rows {
		items = append(items, SessionFromModel(row))
	}
	return &types.ListEnvelope[resources.Session]{
		Items:    items,
		MetaData: pagination.NewMetaData(query.PageNumber, query.PageSize, int(total)),
	}, nil
}

func SessionFromModel(m models.UserSession) resources.Session {
	s := resources.Session{
		UserID:     m.UserID,
		LoginTime:  m.LoginTime,
		LogoutTime: m.LogoutTime,
	}
	if m.User != nil {
		s.UserName = m.User.FullName()
	}
	if m.LogoutTime != nil {
		s.SessionDuration = FormatDuration(m.LogoutTime.Sub(m.LoginTime))
	}
	return s
}

// FormatDuration renders d as HH:MM:SS; hours may exceed 24.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs/60)%60, secs%60)
}
