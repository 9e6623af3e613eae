package profile

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/abhisek/capsulemed/internal/store"
)

// BackendRedis names the Redis backend in sessions and configuration.
const BackendRedis = "redis"

// RedisStore keeps accounts and progress in Redis:
//
//	{prefix}:user:{email}     hash  uid, email, display_name, password_hash, created_at
//	{prefix}:uid:{uid}        string email
//	{prefix}:completed:{uid}  set   capsule ids
//
// The signed-in uid is remembered in the local session table so the
// terminal stays signed in across runs.
type RedisStore struct {
	rdb      *goredis.Client
	prefix   string
	sessions store.ProfileRepo
	cost     int
}

// NewRedisStore connects to url and checks the connection.
func NewRedisStore(ctx context.Context, url, prefix string, sessions store.ProfileRepo) (*RedisStore, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 5 * time.Second
	}
	rdb := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{rdb: rdb, prefix: prefix, sessions: sessions, cost: bcrypt.DefaultCost}, nil
}

func (s *RedisStore) userKey(email string) string { return s.prefix + ":user:" + email }
func (s *RedisStore) uidKey(uid string) string   { return s.prefix + ":uid:" + uid }
func (s *RedisStore) doneKey(uid string) string  { return s.prefix + ":completed:" + uid }

func (s *RedisStore) Current(ctx context.Context) (*Profile, error) {
	sess, err := s.sessions.Session(ctx)
	if err != nil {
		return nil, err
	}
	if sess == nil || sess.Backend != BackendRedis {
		return nil, nil
	}
	email, err := s.rdb.Get(ctx, s.uidKey(sess.UID)).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, s.sessions.ClearSession(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get uid: %w", err)
	}
	fields, err := s.rdb.HGetAll(ctx, s.userKey(email)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis get user: %w", err)
	}
	if len(fields) == 0 {
		return nil, s.sessions.ClearSession(ctx)
	}
	return s.load(ctx, fields)
}

func (s *RedisStore) SignUp(ctx context.Context, email, password, displayName string) (*Profile, error) {
	email = normalizeEmail(email)
	if err := validateSignUp(email, password, displayName); err != nil {
		return nil, err
	}
	hash, err := hashPassword(password, s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	uid := uuid.NewString()
	key := s.userKey(email)

	// HSETNX on uid claims the email atomically.
	claimed, err := s.rdb.HSetNX(ctx, key, "uid", uid).Result()
	if err != nil {
		return nil, fmt.Errorf("redis claim email: %w", err)
	}
	if !claimed {
		return nil, ErrEmailInUse
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.HSet(ctx, key,
			"email", email,
			"display_name", displayName,
			"password_hash", hash,
			"created_at", strconv.FormatInt(time.Now().UnixMilli(), 10),
		)
		pipe.Set(ctx, s.uidKey(uid), email, 0)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("redis create user: %w", err)
	}
	if err := s.sessions.SetSession(ctx, store.Session{UID: uid, Backend: BackendRedis}); err != nil {
		return nil, err
	}
	return &Profile{UID: uid, Email: email, DisplayName: displayName, CompletedCapsules: []int{}}, nil
}

func (s *RedisStore) SignIn(ctx context.Context, email, password string) (*Profile, error) {
	fields, err := s.rdb.HGetAll(ctx, s.userKey(normalizeEmail(email))).Result()
	if err != nil {
		return nil, fmt.Errorf("redis get user: %w", err)
	}
	if fields["password_hash"] == "" {
		return nil, ErrInvalidCredentials
	}
	if err := checkPassword(fields["password_hash"], password); err != nil {
		return nil, err
	}
	if err := s.sessions.SetSession(ctx, store.Session{UID: fields["uid"], Backend: BackendRedis}); err != nil {
		return nil, err
	}
	return s.load(ctx, fields)
}

func (s *RedisStore) SignInWithProvider(ctx context.Context, provider string) (*Profile, error) {
	return providerSignIn(ctx, provider)
}

func (s *RedisStore) SignOut(ctx context.Context) error {
	return s.sessions.ClearSession(ctx)
}

func (s *RedisStore) MarkCompleted(ctx context.Context, capsuleID int) (bool, error) {
	p, err := s.Current(ctx)
	if err != nil {
		return false, err
	}
	if p == nil {
		return false, ErrNotSignedIn
	}
	n, err := s.rdb.SAdd(ctx, s.doneKey(p.UID), capsuleID).Result()
	if err != nil {
		return false, fmt.Errorf("redis add completed: %w", err)
	}
	return n > 0, nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func (s *RedisStore) load(ctx context.Context, fields map[string]string) (*Profile, error) {
	uid := fields["uid"]
	members, err := s.rdb.SMembers(ctx, s.doneKey(uid)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis get completed: %w", err)
	}
	done := make([]int, 0, len(members))
	for _, m := range members {
		id, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		done = append(done, id)
	}
	slices.Sort(done)
	return &Profile{
		UID:               uid,
		Email:             fields["email"],
		DisplayName:       fields["display_name"],
		CompletedCapsules: done,
	}, nil
}
