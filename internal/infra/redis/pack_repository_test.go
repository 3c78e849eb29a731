package redis

import (
	"context"
	"reflect"
	"testing"
	"time"

	"blindpick-service/internal/domain"
	"blindpick-service/internal/infra/memory"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestPackRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	loader := &countingLoader{
		PackLoader: memory.NewStaticPackLoader(map[string]domain.Pack{
			"pack-1": samplePack(),
		}),
	}
	repo := NewPackRepository(client, loader, time.Minute)

	pack, err := repo.GetPack(context.Background(), "pack-1")
	if err != nil {
		t.Fatalf("get pack: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}

	// Second call should hit the cache and keep the round order intact.
	cached, err := repo.GetPack(context.Background(), "pack-1")
	if err != nil {
		t.Fatalf("get pack 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if !reflect.DeepEqual(cached.Rounds, pack.Rounds) {
		t.Fatalf("expected ordered rounds from cache, got %+v", cached.Rounds)
	}
}

type countingLoader struct {
	memory.PackLoader
	calls int
}

func (l *countingLoader) LoadPack(ctx context.Context, packID string) (domain.Pack, error) {
	l.calls++
	return l.PackLoader.LoadPack(ctx, packID)
}

func samplePack() domain.Pack {
	return domain.Pack{
		ID: "pack-1",
		Rounds: []domain.RoundTemplate{
			{Title: "Capitals", Video: "clips/capitals.mp4", Truth: "Paris"},
			{Title: "Rivers", Video: "clips/rivers.mp4", Truth: "Danube"},
		},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
