package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkIDs(t *testing.T) {
	ids := make([]string, 25)
	for i := range ids {
		ids[i] = fmt.Sprintf("id-%02d", i)
	}

	chunks := chunkIDs(ids, maxInValues)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 10)
	assert.Len(t, chunks[1], 10)
	assert.Len(t, chunks[2], 5)
}

func TestChunkIDsDedupesAndDropsEmpty(t *testing.T) {
	chunks := chunkIDs([]string{"a", "b", "a", "", "c", "b"}, maxInValues)
	require.Len(t, chunks, 1)
	assert.Equal(t, []string{"a", "b", "c"}, chunks[0])
}

func TestChunkIDsEmpty(t *testing.T) {
	assert.Empty(t, chunkIDs(nil, maxInValues))
	assert.Empty(t, chunkIDs([]string{""}, maxInValues))
}

func TestFetchInChunksIssuesOneQueryPerChunk(t *testing.T) {
	ids := make([]string, 25)
	for i := range ids {
		ids[i] = fmt.Sprintf("id-%02d", i)
	}

	var mu sync.Mutex
	calls := 0
	// id-13 and id-21 simulate documents that no longer exist
	missing := map[string]bool{"id-13": true, "id-21": true}

	results, err := fetchInChunks(context.Background(), ids, func(_ context.Context, chunk []string) ([]string, error) {
		mu.Lock()
		calls++
		mu.Unlock()

		var found []string
		for _, id := range chunk {
			if !missing[id] {
				found = append(found, id)
			}
		}
		return found, nil
	})
	require.NoError(t, err)

	assert.Equal(t, 3, calls)
	assert.Len(t, results, 23)

	seen := make(map[string]bool)
	for _, id := range results {
		assert.False(t, seen[id], "duplicate result %s", id)
		assert.False(t, missing[id], "missing id %s surfaced", id)
		seen[id] = true
	}
}

func TestFetchInChunksPropagatesError(t *testing.T) {
	_, err := fetchInChunks(context.Background(), []string{"a", "b"}, func(context.Context, []string) ([]string, error) {
		return nil, fmt.Errorf("store unavailable")
	})
	assert.Error(t, err)
}

func TestFetchInChunksNoIDs(t *testing.T) {
	results, err := fetchInChunks(context.Background(), nil, func(context.Context, []string) ([]string, error) {
		t.Fatal("fetch should not run for an empty id set")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Empty(t, results)
}
