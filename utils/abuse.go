package utils

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Per-IP upload abuse guard backed by Redis counters. Every check fails
// open: a nil client or a Redis error never blocks an upload.

func uploadKey(parts ...string) string {
	return "upload:" + strings.Join(parts, ":")
}

// UploadCooldownTry enforces a short cooldown between upload attempts per IP.
func UploadCooldownTry(cli *redis.Client, ip string, cooldownSec int) bool {
	if cli == nil || cooldownSec <= 0 {
		return true
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	key := uploadKey("cooldown", ip)
	ok, err := cli.SetNX(ctx, key, "1", time.Duration(cooldownSec)*time.Second).Result()
	if err != nil {
		return true
	}
	return ok
}

// UploadDailyLimitCheck allows up to N successful uploads per day per IP.
func UploadDailyLimitCheck(cli *redis.Client, ip string, limit int) bool {
	if cli == nil || limit <= 0 {
		return true
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	key := uploadKey("day", ip, time.Now().Format("20060102"))
	n, err := cli.Get(ctx, key).Int()
	if err == redis.Nil {
		n = 0
	} else if err != nil {
		return true
	}
	return n < limit
}

// UploadDailyIncrement increments the success counter for today.
func UploadDailyIncrement(cli *redis.Client, ip string) {
	if cli == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	key := uploadKey("day", ip, time.Now().Format("20060102"))
	if err := cli.Incr(ctx, key).Err(); err == nil {
		ttl := time.Until(time.Now().Truncate(24 * time.Hour).Add(24 * time.Hour))
		_ = cli.Expire(ctx, key, ttl).Err()
	}
}
