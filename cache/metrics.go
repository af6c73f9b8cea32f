/*
Copyright 2026 The Flux authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// CacheEventTypeMiss is the event type for cache misses.
	CacheEventTypeMiss = "cache_miss"
	// CacheEventTypeHit is the event type for cache hits.
	CacheEventTypeHit = "cache_hit"
	// StatusSuccess is the status for cache requests that were served.
	StatusSuccess = "success"
	// StatusIgnored is the status for puts dropped because of a nil key or value.
	StatusIgnored = "ignored"
)

type cacheMetrics struct {
	cacheEventsCounter   *prometheus.CounterVec
	cacheItemsGauge      prometheus.Gauge
	cacheRequestsCounter *prometheus.CounterVec
	cacheEvictionCounter prometheus.Counter
}

// newCacheMetrics returns a new cacheMetrics registered with reg. Every
// metric carries a constant policy label.
func newCacheMetrics(reg prometheus.Registerer, prefix string, policy Policy) *cacheMetrics {
	labels := prometheus.Labels{"policy": policy.String()}
	return &cacheMetrics{
		cacheEventsCounter: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name:        prefix + "cache_events_total",
				Help:        "Total number of cache retrieval events partitioned by hit or miss.",
				ConstLabels: labels,
			},
			[]string{"event_type"},
		),
		cacheItemsGauge: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name:        prefix + "cached_items",
				Help:        "Total number of items in the cache.",
				ConstLabels: labels,
			},
		),
		cacheRequestsCounter: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name:        prefix + "cache_requests_total",
				Help:        "Total number of cache requests partitioned by status.",
				ConstLabels: labels,
			},
			[]string{"status"},
		),
		cacheEvictionCounter: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name:        prefix + "cache_evictions_total",
				Help:        "Total number of cache evictions.",
				ConstLabels: labels,
			},
		),
	}
}

// incCacheEvents increments by 1 the cache event count for the given event type.
func (m *cacheMetrics) incCacheEvents(event string) {
	m.cacheEventsCounter.WithLabelValues(event).Inc()
}

// incCacheItems increments the number of cached items by 1.
func (m *cacheMetrics) incCacheItems() {
	m.cacheItemsGauge.Inc()
}

// incCacheRequests increments the cache request count for the given status.
func (m *cacheMetrics) incCacheRequests(status string) {
	m.cacheRequestsCounter.WithLabelValues(status).Inc()
}

// incCacheEvictions increments the cache eviction count by 1.
func (m *cacheMetrics) incCacheEvictions() {
	m.cacheEvictionCounter.Inc()
}

func recordRequest(metrics *cacheMetrics, status string) {
	if metrics != nil {
		metrics.incCacheRequests(status)
	}
}

func recordEviction(metrics *cacheMetrics) {
	if metrics != nil {
		metrics.incCacheEvictions()
	}
}

func recordItemIncrement(metrics *cacheMetrics) {
	if metrics != nil {
		metrics.incCacheItems()
	}
}

func recordEvent(metrics *cacheMetrics, event string) {
	if metrics != nil {
		metrics.incCacheEvents(event)
	}
}
