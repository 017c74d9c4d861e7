package objectstore

import (
	"context"
	"strings"
	"sync"

	"cuesynth/internal/detection"
	"cuesynth/internal/services"
	"cuesynth/internal/textutil"
)

// DefaultFetchWorkers bounds concurrent shard downloads when no explicit
// limit is configured.
const DefaultFetchWorkers = 4

// SelectShardKeys keeps the keys whose base name contains filePrefix.
func SelectShardKeys(keys []string, filePrefix string) []string {
	var selected []string
	for _, key := range keys {
		if strings.Contains(textutil.BaseName(key), filePrefix) {
			selected = append(selected, key)
		}
	}
	return selected
}

// FetchShards downloads every key with at most workers concurrent requests
// and returns the shards ordered by their numeric key suffix. The first fetch
// failure cancels the remaining downloads and is returned as a collaborator
// error.
func FetchShards(ctx context.Context, store Store, bucket string, keys []string, workers int) ([]detection.Shard, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	if workers <= 0 {
		workers = DefaultFetchWorkers
	}
	if workers > len(keys) {
		workers = len(keys)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	shards := make([]detection.Shard, len(keys))
	sem := make(chan struct{}, workers)
	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for i, key := range keys {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
		}
		if err := ctx.Err(); err != nil {
			fail(err)
			break
		}
		wg.Add(1)
		go func(i int, key string) {
			defer wg.Done()
			defer func() { <-sem }()
			body, err := store.Get(ctx, bucket, key)
			if err != nil {
				fail(services.Wrap(services.ErrCollaborator, "", "fetch shard", bucket+"/"+key, err))
				return
			}
			shards[i] = detection.Shard{Index: textutil.ShardIndex(key), Key: key, Body: body}
		}(i, key)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return detection.SortShards(shards), nil
}
