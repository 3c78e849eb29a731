package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sort"
	"strconv"
	"time"

	"blindpick-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// PackLoader fetches round packs from a backing store (file, Postgres, etc).
type PackLoader interface {
	LoadPack(ctx context.Context, packID string) (domain.Pack, error)
}

// PackRepository caches round packs in Redis (one hash per pack, field = round
// index, value = round JSON) and falls back to a loader on cache miss.
type PackRepository struct {
	client *redis.Client
	loader PackLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewPackRepository(client *redis.Client, loader PackLoader, ttl time.Duration) *PackRepository {
	return &PackRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *PackRepository) GetPack(ctx context.Context, packID string) (domain.Pack, error) {
	key := r.roundsKey(packID)

	fields, err := r.client.HGetAll(ctx, key).Result()
	if err == nil && len(fields) > 0 {
		return buildPackFromCache(packID, fields)
	}

	result, err, _ := r.sf.Do(packID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		fields, err := r.client.HGetAll(ctx, key).Result()
		if err == nil && len(fields) > 0 {
			return buildPackFromCache(packID, fields)
		}

		pack, err := r.loader.LoadPack(ctx, packID)
		if err != nil {
			return domain.Pack{}, err
		}

		ttl := r.ttlWithJitter()
		pipe := r.client.Pipeline()
		for i, round := range pack.Rounds {
			data, err := json.Marshal(round)
			if err != nil {
				return domain.Pack{}, err
			}
			pipe.HSet(ctx, key, strconv.Itoa(i), data)
		}
		if ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		_, _ = pipe.Exec(ctx)

		return pack, nil
	})
	if err != nil {
		return domain.Pack{}, err
	}
	return result.(domain.Pack), nil
}

func (r *PackRepository) roundsKey(packID string) string {
	return "blindpick:pack:" + packID + ":rounds"
}

// buildPackFromCache rebuilds the ordered round list from hash fields keyed
// by round index.
func buildPackFromCache(packID string, fields map[string]string) (domain.Pack, error) {
	indexes := make([]int, 0, len(fields))
	byIndex := make(map[int]domain.RoundTemplate, len(fields))
	for field, raw := range fields {
		i, err := strconv.Atoi(field)
		if err != nil {
			continue
		}
		var round domain.RoundTemplate
		if err := json.Unmarshal([]byte(raw), &round); err != nil {
			return domain.Pack{}, err
		}
		indexes = append(indexes, i)
		byIndex[i] = round
	}
	sort.Ints(indexes)
	rounds := make([]domain.RoundTemplate, 0, len(indexes))
	for _, i := range indexes {
		rounds = append(rounds, byIndex[i])
	}
	return domain.Pack{ID: packID, Rounds: rounds}, nil
}

func (r *PackRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
