package main

import (
	"fmt"
	"sync"
	"time"
)

// metricsCollector tracks refresh activity for the health endpoint.
type metricsCollector struct {
	uniquePRs      map[string]bool
	uniqueProjects map[string]bool
	lastRefresh    time.Time
	totalRefreshes int64
	mu             sync.RWMutex
}

func newMetricsCollector() *metricsCollector {
	return &metricsCollector{
		uniquePRs:      make(map[string]bool),
		uniqueProjects: make(map[string]bool),
	}
}

// recordRefresh records one completed aggregation cycle.
func (m *metricsCollector) recordRefresh(projects []string, prKeys []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, project := range projects {
		m.uniqueProjects[project] = true
	}
	for _, key := range prKeys {
		m.uniquePRs[key] = true
	}
	m.lastRefresh = time.Now()
	m.totalRefreshes++
}

type metricsStats struct {
	LastRefresh    time.Time
	Projects       int
	PRsSeen        int
	TotalRefreshes int64
}

func (m *metricsCollector) stats() metricsStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return metricsStats{
		Projects:       len(m.uniqueProjects),
		PRsSeen:        len(m.uniquePRs),
		LastRefresh:    m.lastRefresh,
		TotalRefreshes: m.totalRefreshes,
	}
}

// prKey identifies a pull request across refreshes. Ids are unique only
// within a repository, so the key carries both.
func prKey(project, repo string, id int) string {
	return fmt.Sprintf("%s/%s#%d", project, repo, id)
}
