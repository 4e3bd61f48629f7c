package repository

import (
	"context"
	"time"
)

// ログアウト済みトークンの失効リスト。
// jtiをトークンの残り有効期間だけ保持する。
type TokenBlacklist interface {
	Add(ctx context.Context, jti string, ttl time.Duration) error
	Contains(ctx context.Context, jti string) (bool, error)
}
