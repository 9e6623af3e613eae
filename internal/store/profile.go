package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/sqlgraph"
)

// profileRepo implements ProfileRepo. Emails are stored lower-cased.
type profileRepo struct {
	drv *entsql.Driver
}

type userRow struct {
	UID          string `sql:"uid"`
	Email        string `sql:"email"`
	DisplayName  string `sql:"display_name"`
	PasswordHash string `sql:"password_hash"`
	Provider     string `sql:"provider"`
	CreatedAt    int64  `sql:"created_at"`
}

func (row userRow) record() *UserRecord {
	return &UserRecord{
		UID:          row.UID,
		Email:        row.Email,
		DisplayName:  row.DisplayName,
		PasswordHash: row.PasswordHash,
		Provider:     row.Provider,
		CreatedAt:    time.UnixMilli(row.CreatedAt),
	}
}

func (r *profileRepo) CreateUser(ctx context.Context, u UserRecord) error {
	if u.Provider == "" {
		u.Provider = "password"
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	ins := builder().Insert(UsersTable.Name).
		Columns("uid", "email", "display_name", "password_hash", "provider", "created_at").
		Values(u.UID, normalizeEmail(u.Email), u.DisplayName, u.PasswordHash, u.Provider, u.CreatedAt.UnixMilli())
	if _, err := exec(ctx, r.drv, ins); err != nil {
		if sqlgraph.IsUniqueConstraintError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *profileRepo) UserByEmail(ctx context.Context, email string) (*UserRecord, error) {
	return r.userWhere(ctx, entsql.EQ("email", normalizeEmail(email)))
}

func (r *profileRepo) UserByUID(ctx context.Context, uid string) (*UserRecord, error) {
	return r.userWhere(ctx, entsql.EQ("uid", uid))
}

func (r *profileRepo) userWhere(ctx context.Context, p *entsql.Predicate) (*UserRecord, error) {
	sel := builder().Select("uid", "email", "display_name", "password_hash", "provider", "created_at").
		From(entsql.Table(UsersTable.Name)).
		Where(p).
		Limit(1)

	var rows []userRow
	if err := scanAll(ctx, r.drv, sel, &rows); err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[0].record(), nil
}

func (r *profileRepo) AddCompleted(ctx context.Context, uid string, capsuleID int) (bool, error) {
	ins := builder().Insert(CompletedCapsulesTable.Name).
		Columns("user_uid", "capsule_id", "completed_at").
		Values(uid, capsuleID, time.Now().UnixMilli()).
		OnConflict(
			entsql.ConflictColumns("user_uid", "capsule_id"),
			entsql.DoNothing(),
		)
	res, err := exec(ctx, r.drv, ins)
	if err != nil {
		return false, fmt.Errorf("add completed capsule: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("add completed capsule: %w", err)
	}
	return n > 0, nil
}

func (r *profileRepo) Completed(ctx context.Context, uid string) ([]int, error) {
	sel := builder().Select("capsule_id").
		From(entsql.Table(CompletedCapsulesTable.Name)).
		Where(entsql.EQ("user_uid", uid)).
		OrderBy("completed_at", "id")

	var ids []int
	if err := scanAll(ctx, r.drv, sel, &ids); err != nil {
		return nil, fmt.Errorf("query completed capsules: %w", err)
	}
	return ids, nil
}

type sessionRow struct {
	UID     string `sql:"uid"`
	Backend string `sql:"backend"`
}

func (r *profileRepo) Session(ctx context.Context) (*Session, error) {
	sel := builder().Select("uid", "backend").
		From(entsql.Table(SessionsTable.Name)).
		Where(entsql.EQ("id", 1))

	var rows []sessionRow
	if err := scanAll(ctx, r.drv, sel, &rows); err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &Session{UID: rows[0].UID, Backend: rows[0].Backend}, nil
}

func (r *profileRepo) SetSession(ctx context.Context, s Session) error {
	ins := builder().Insert(SessionsTable.Name).
		Columns("id", "uid", "backend", "updated_at").
		Values(1, s.UID, s.Backend, time.Now().UnixMilli()).
		OnConflict(
			entsql.ConflictColumns("id"),
			entsql.ResolveWithNewValues(),
		)
	if _, err := exec(ctx, r.drv, ins); err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	return nil
}

func (r *profileRepo) ClearSession(ctx context.Context) error {
	del := builder().Delete(SessionsTable.Name).Where(entsql.EQ("id", 1))
	if _, err := exec(ctx, r.drv, del); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
