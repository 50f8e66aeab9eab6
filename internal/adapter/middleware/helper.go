package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "sched:"

func nowUTC() time.Time { return time.Now().UTC() }

// requestHash digests the canonical (sorted) query string and the body, so
// the same loan terms hit the same entry whatever the parameter order.
func requestHash(query url.Values, body []byte) string {
	h := sha256.New()
	h.Write([]byte(query.Encode()))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

func buildKey(method, path, hash string) string {
	return keyPrefix + strings.ToLower(method) + ":" + path + ":" + hash
}

// ---- Redis helpers ----

// loadEntry reports found=false on a plain cache miss.
func loadEntry(ctx context.Context, rdb *redis.Client, key string) (entry cacheEntry, found bool, err error) {
	v, err := rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return entry, false, nil
	}
	if err != nil {
		return entry, false, err
	}
	if err := json.Unmarshal(v, &entry); err != nil {
		return entry, false, err
	}
	return entry, true, nil
}

func saveEntry(ctx context.Context, rdb *redis.Client, key string, entry cacheEntry, ttl time.Duration) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, payload, ttl).Err()
}
