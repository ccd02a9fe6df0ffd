package services

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// maxInValues is the document store's cap on set-membership query values.
// Every multi-id lookup is chunked to stay under it.
const maxInValues = 10

// chunkIDs dedupes ids, preserving first-seen order, and splits them into
// chunks of at most size values.
func chunkIDs(ids []string, size int) [][]string {
	seen := make(map[string]struct{}, len(ids))
	deduped := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		deduped = append(deduped, id)
	}

	var chunks [][]string
	for len(deduped) > size {
		chunks = append(chunks, deduped[:size])
		deduped = deduped[size:]
	}
	if len(deduped) > 0 {
		chunks = append(chunks, deduped)
	}
	return chunks
}

// fetchInChunks runs fetch once per id chunk, fanning the chunks out
// concurrently and flattening the results in chunk order. Missing ids are not
// an error; fetch simply returns fewer documents.
func fetchInChunks[T any](ctx context.Context, ids []string, fetch func(context.Context, []string) ([]T, error)) ([]T, error) {
	chunks := chunkIDs(ids, maxInValues)
	if len(chunks) == 0 {
		return nil, nil
	}

	results := make([][]T, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			docs, err := fetch(gctx, chunk)
			if err != nil {
				return err
			}
			results[i] = docs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []T
	for _, docs := range results {
		out = append(out, docs...)
	}
	return out, nil
}
