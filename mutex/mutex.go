package mutex

import (
	"fmt"
	"github.com/go-redis/redis"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis"
	"time"
)

const (
	actionLockExpiration = time.Minute * 5
	actionKeyPattern     = "enforce:%v:user:%v:%v"
)

type Builder struct {
	rs *redsync.Redsync
}

func NewBuilder(address string) *Builder {
	client := redis.NewClient(&redis.Options{Addr: address})
	pool := goredis.NewPool(client)
	rs := redsync.New(pool)
	return &Builder{rs: rs}
}

// Action guards one enforcement side effect: a single kind of action for
// a single user on a single local date. Holding it makes the mute,
// reminder and conversion writes at-most-once even when several bot
// instances share the store.
func (c *Builder) Action(kind string, userID int64, date string) *redsync.Mutex {
	key := fmt.Sprintf(actionKeyPattern, kind, userID, date)
	return c.rs.NewMutex(key, redsync.WithExpiry(actionLockExpiration))
}
