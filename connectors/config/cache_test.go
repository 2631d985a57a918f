// Copyright 2025 AxonFlow
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"logarchive/platform/connectors/base"
)

func archiveConfigs(names ...string) []*base.ConnectorConfig {
	configs := make([]*base.ConnectorConfig, 0, len(names))
	for _, name := range names {
		configs = append(configs, &base.ConnectorConfig{Name: name, Type: "coralogix"})
	}
	return configs
}

func TestCacheEntry_IsExpired(t *testing.T) {
	fresh := &CacheEntry[int]{ExpiresAt: time.Now().Add(time.Minute)}
	if fresh.IsExpired() {
		t.Error("expected fresh entry not expired")
	}
	stale := &CacheEntry[int]{ExpiresAt: time.Now().Add(-time.Second)}
	if !stale.IsExpired() {
		t.Error("expected stale entry expired")
	}
}

func TestNewConfigCache(t *testing.T) {
	if ttl := NewConfigCache(0).TTL(); ttl != DefaultCacheTTL {
		t.Errorf("expected default TTL, got %v", ttl)
	}
	if ttl := NewConfigCache(time.Minute).TTL(); ttl != time.Minute {
		t.Errorf("expected 1m TTL, got %v", ttl)
	}
}

func TestConfigCache_Connectors(t *testing.T) {
	cache := NewConfigCache(time.Minute)

	if _, ok := cache.GetConnectors("tenant"); ok {
		t.Error("expected miss on empty cache")
	}

	cache.SetConnectors("tenant", archiveConfigs("prod", "eu"))
	got, ok := cache.GetConnectors("tenant")
	if !ok || len(got) != 2 {
		t.Fatalf("expected 2 cached configs, got %v (%v)", got, ok)
	}

	if _, ok := cache.GetConnectors("other"); ok {
		t.Error("expected tenant isolation")
	}

	stats := cache.GetStats()
	if stats.Hits != 1 || stats.Misses != 2 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if rate := cache.HitRate(); rate < 33 || rate > 34 {
		t.Errorf("expected ~33%% hit rate, got %v", rate)
	}
}

func TestConfigCache_Expiry(t *testing.T) {
	cache := NewConfigCache(20 * time.Millisecond)
	cache.SetConnectors("tenant", archiveConfigs("prod"))
	time.Sleep(40 * time.Millisecond)

	if _, ok := cache.GetConnectors("tenant"); ok {
		t.Error("expected expired entry to miss")
	}
	if evicted := cache.Cleanup(); evicted != 1 {
		t.Errorf("expected 1 eviction, got %d", evicted)
	}
	if evicted := cache.Cleanup(); evicted != 0 {
		t.Errorf("expected nothing left to evict, got %d", evicted)
	}
}

func TestConfigCache_Invalidate(t *testing.T) {
	cache := NewConfigCache(time.Minute)
	cache.SetConnectors("tenant", archiveConfigs("prod", "eu"))

	cache.InvalidateConnector("tenant", "prod")
	got, ok := cache.GetConnectors("tenant")
	if !ok || len(got) != 1 || got[0].Name != "eu" {
		t.Errorf("expected only eu left, got %v", got)
	}

	cache.InvalidateConnector("tenant", "")
	if _, ok := cache.GetConnectors("tenant"); ok {
		t.Error("expected tenant entry removed")
	}

	cache.SetConnectors("a", archiveConfigs("x"))
	cache.SetConnectors("b", archiveConfigs("y"))
	cache.InvalidateAll()
	if _, ok := cache.GetConnectors("a"); ok {
		t.Error("expected all entries removed")
	}

	if stats := cache.GetStats(); stats.Evictions != 3 || stats.LastEviction.IsZero() {
		t.Errorf("unexpected eviction stats %+v", stats)
	}
	if rate := NewConfigCache(0).HitRate(); rate != 0 {
		t.Errorf("expected zero hit rate on unused cache, got %v", rate)
	}
}

func TestConfigCache_ConcurrentAccess(t *testing.T) {
	cache := NewConfigCache(time.Minute)
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tenant := fmt.Sprintf("tenant-%d", i%4)
			cache.SetConnectors(tenant, archiveConfigs("prod"))
			cache.GetConnectors(tenant)
			if i%5 == 0 {
				cache.InvalidateConnector(tenant, "prod")
			}
			cache.Cleanup()
		}(i)
	}
	wg.Wait()

	stats := cache.GetStats()
	if stats.Hits+stats.Misses != 20 {
		t.Errorf("expected 20 lookups recorded, got %d", stats.Hits+stats.Misses)
	}
}
