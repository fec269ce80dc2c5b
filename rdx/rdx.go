package rdx

import (
	"log"
	"os"
	"time"

	"kitabi/globals"

	"github.com/redis/go-redis/v9"
)

var Conn *redis.Client

// Init dials Redis. The cache is best-effort: when Redis is down every
// helper degrades to a miss and callers hit Mongo directly.
func Init() {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	Conn = redis.NewClient(&redis.Options{Addr: addr})
	if err := Conn.Ping(globals.Ctx).Err(); err != nil {
		log.Println("Redis unavailable, caching disabled:", err)
	}
}

func Get(key string) (string, bool) {
	if Conn == nil {
		return "", false
	}
	val, err := Conn.Get(globals.Ctx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func SetTTL(key, value string, ttl time.Duration) {
	if Conn == nil {
		return
	}
	if err := Conn.Set(globals.Ctx, key, value, ttl).Err(); err != nil {
		log.Println("Redis set error:", err)
	}
}

func Del(keys ...string) {
	if Conn == nil {
		return
	}
	if err := Conn.Del(globals.Ctx, keys...).Err(); err != nil {
		log.Println("Redis del error:", err)
	}
}
