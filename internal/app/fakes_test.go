package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"

	"culture_hotspots/internal/domain"
	"culture_hotspots/internal/storage/memory"
)

const sampleCSV = "\ufeff_id,SITENAME,ADDRESS,TOURTYPE,NEIGHBOURHOOD,INTERESTS,geometry,WARD\n" +
	`1,Art Gallery of Ontario,317 Dundas St W,Museum,Grange Park,"Art, Architecture","{""coordinates"": [[-79.3925, 43.6536]], ""type"": ""MultiPoint""}",10` + "\n" +
	`2,Royal Ontario Museum,None,Museum,Annex,History,"{""coordinates"": [[-79.3948, 43.6677]], ""type"": ""MultiPoint""}",11` + "\n" +
	`3,Harbourfront Centre,,Arts Venue,,Music,not json,` + "\n"

type stringSource struct{ body string }

func (s stringSource) Name() string { return "inline" }
func (s stringSource) Open(context.Context) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(s.body)), nil
}

type brokenSource struct{}

func (brokenSource) Name() string { return "broken" }
func (brokenSource) Open(context.Context) (io.ReadCloser, error) {
	return nil, errors.New("connection refused")
}

// failingStore rejects Put for the listed ids.
type failingStore struct {
	*memory.Store
	reject map[string]bool
}

func (s failingStore) Put(ctx context.Context, h domain.Hotspot) error {
	if s.reject[h.ID] {
		return errors.New("disk full")
	}
	return s.Store.Put(ctx, h)
}

type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
	dels int
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string][]byte{}} }

func (c *fakeCache) Get(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(_ context.Context, key string, v any, _ int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = b
	c.sets++
	return nil
}

func (c *fakeCache) Del(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	c.dels++
	return nil
}

func (c *fakeCache) DelPrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
			c.dels++
		}
	}
	return nil
}

func (c *fakeCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}
