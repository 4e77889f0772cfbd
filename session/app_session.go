package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"Gin_postgres_redis_inventory/apperr"
	"Gin_postgres_redis_inventory/auth"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Store 把登录身份保存在 redis，cookie 只带会话 id
type Store struct {
	rdb *redis.Client
	ttl time.Duration

	// Now 可在测试中替换
	Now func() time.Time
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl, Now: time.Now}
}

type Session struct {
	ID        string        `json:"-"`
	Identity  auth.Identity `json:"identity"`
	IssuedAt  int64         `json:"iat"`
	ExpiresAt int64         `json:"exp"`
}

func key(id string) string           { return fmt.Sprintf("app:sess:%s", id) }
func personSetKey(pid string) string { return fmt.Sprintf("app:person_sessions:%s", pid) }
func touchKey(id string) string      { return fmt.Sprintf("app:sess_touch:%s", id) }

func (s *Store) TTL() time.Duration { return s.ttl }

func (s *Store) Create(ctx context.Context, id auth.Identity) (*Session, error) {
	now := s.Now()
	sess := &Session{
		ID:        uuid.NewString(),
		Identity:  id,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.ttl).Unix(),
	}
	b, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, key(sess.ID), b, s.ttl)
	pipe.SAdd(ctx, personSetKey(id.ID), sess.ID)
	pipe.Expire(ctx, personSetKey(id.ID), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	b, err := s.rdb.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperr.New(apperr.Unauthorized, "session expired or unknown")
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(b, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	sess.ID = id
	return &sess, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	sess, _ := s.Get(ctx, id) // 忽略失败
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key(id), touchKey(id))
	if sess != nil {
		pipe.SRem(ctx, personSetKey(sess.Identity.ID), id)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Touch 滑动过期；throttle 内重复调用只算一次，返回是否真正续期
func (s *Store) Touch(ctx context.Context, sess *Session, throttle time.Duration) (bool, error) {
	if throttle > 0 {
		ok, err := s.rdb.SetNX(ctx, touchKey(sess.ID), "1", throttle).Result()
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	now := s.Now()
	sess.ExpiresAt = now.Add(s.ttl).Unix()
	b, err := json.Marshal(sess)
	if err != nil {
		return false, fmt.Errorf("encode session: %w", err)
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, key(sess.ID), b, s.ttl)
	pipe.Expire(ctx, personSetKey(sess.Identity.ID), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("touch session: %w", err)
	}
	return true, nil
}

// RevokeAllForPerson 删除人员、改密码或改权限时撤销其全部会话
func (s *Store) RevokeAllForPerson(ctx context.Context, personID string) error {
	ids, err := s.rdb.SMembers(ctx, personSetKey(personID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	pipe := s.rdb.TxPipeline()
	for _, sid := range ids {
		pipe.Del(ctx, key(sid), touchKey(sid))
	}
	pipe.Del(ctx, personSetKey(personID))
	_, err = pipe.Exec(ctx)
	return err
}
