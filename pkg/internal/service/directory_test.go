package service

import (
	"context"
	"testing"
	"time"

	"github.com/yeisme/casefile/pkg/cache"
	"github.com/yeisme/casefile/pkg/internal/storage/kv"
	"github.com/yeisme/casefile/pkg/internal/testutil"
)

func TestCachedDirectory(t *testing.T) {
	ctx := context.Background()

	store, err := kv.NewMemoryKV(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() { _ = store.Close() })

	source := testutil.NewStubDirectory(map[string]string{"ana": "Ana Souza", "bruno": "Bruno Lima"})
	dir := NewCachedDirectory(source, cache.NewCache(store, "users"), time.Minute)

	names, err := dir.DisplayNames(ctx, []string{"ana", "", "ana", "ghost"})
	if err != nil {
		t.Fatal(err)
	}

	if len(names) != 1 || names["ana"] != "Ana Souza" {
		t.Errorf("names = %v", names)
	}

	if _, err := dir.DisplayNames(ctx, []string{"ana"}); err != nil {
		t.Fatal(err)
	}

	if source.Calls != 1 {
		t.Errorf("cached lookup hit the source, calls = %d", source.Calls)
	}

	names, _ = dir.DisplayNames(ctx, []string{"ana", "bruno"})
	if names["bruno"] != "Bruno Lima" || source.Calls != 2 {
		t.Errorf("names = %v, calls = %d", names, source.Calls)
	}
}
