package monitoring

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	instanceKeyPrefix = "irock:instances:"
	instanceIndexKey  = "irock:instances:index"

	// Timeout to mark an instance as offline
	defaultInstanceTTL = 90 * time.Second

	// Keep instance records in Redis for 24 hours before removing
	redisStorageTTL = 24 * time.Hour

	instanceRemovalTimeout = 24 * time.Hour
)

// Registry tracks daemon instances in Redis via periodic heartbeats
type Registry struct {
	client      *redis.Client
	instanceTTL time.Duration
	ctx         context.Context
}

// NewRegistry creates a new instance registry backed by Redis
func NewRegistry(redisURL string, ttl time.Duration) (*Registry, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	ctx := context.Background()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	if ttl == 0 {
		ttl = defaultInstanceTTL
	}

	return &Registry{
		client:      client,
		instanceTTL: ttl,
		ctx:         ctx,
	}, nil
}

// UpdateInstance updates or creates an instance record
func (r *Registry) UpdateInstance(info InstanceInfo) error {
	info.LastHeartbeat = time.Now()
	info.Status = StatusOnline

	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal instance info: %w", err)
	}

	instanceKey := instanceKeyPrefix + info.InstanceID
	typeIndexKey := instanceKeyPrefix + string(info.InstanceType) + ":index"

	pipe := r.client.Pipeline()
	pipe.Set(r.ctx, instanceKey, data, redisStorageTTL)
	// Indices persist; stale members are pruned by CleanupStaleInstances
	pipe.SAdd(r.ctx, instanceIndexKey, info.InstanceID)
	pipe.SAdd(r.ctx, typeIndexKey, info.InstanceID)

	if _, err = pipe.Exec(r.ctx); err != nil {
		return fmt.Errorf("failed to update instance: %w", err)
	}

	return nil
}

// GetInstance retrieves an instance by ID
func (r *Registry) GetInstance(instanceID string) (*InstanceInfo, error) {
	data, err := r.client.Get(r.ctx, instanceKeyPrefix+instanceID).Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("instance not found: %s", instanceID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get instance: %w", err)
	}

	var info InstanceInfo
	if err := json.Unmarshal([]byte(data), &info); err != nil {
		return nil, fmt.Errorf("failed to unmarshal instance info: %w", err)
	}

	if time.Since(info.LastHeartbeat) > r.instanceTTL {
		info.Status = StatusOffline
	}

	return &info, nil
}

// ListInstances retrieves all instances, optionally filtered by type and status
func (r *Registry) ListInstances(instanceType InstanceType, status InstanceStatus) ([]*InstanceInfo, error) {
	indexKey := instanceIndexKey
	if instanceType != "" {
		indexKey = instanceKeyPrefix + string(instanceType) + ":index"
	}

	instanceIDs, err := r.client.SMembers(r.ctx, indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list instances: %w", err)
	}

	instances := make([]*InstanceInfo, 0, len(instanceIDs))
	for _, id := range instanceIDs {
		info, err := r.GetInstance(id)
		if err != nil {
			// Record expired in Redis, the cleanup pass will fix the index
			continue
		}

		if status != "" && info.Status != status {
			continue
		}

		instances = append(instances, info)
	}

	return instances, nil
}

// CleanupStaleInstances removes instances that haven't sent heartbeats in 24 hours
func (r *Registry) CleanupStaleInstances() error {
	instanceIDs, err := r.client.SMembers(r.ctx, instanceIndexKey).Result()
	if err != nil {
		return fmt.Errorf("failed to list instances for cleanup: %w", err)
	}

	removedCount := 0
	for _, id := range instanceIDs {
		instanceKey := instanceKeyPrefix + id

		data, err := r.client.Get(r.ctx, instanceKey).Result()
		if err == redis.Nil {
			r.removeFromIndices(id)
			removedCount++
			continue
		}
		if err != nil {
			continue
		}

		var info InstanceInfo
		if err := json.Unmarshal([]byte(data), &info); err != nil {
			continue
		}

		if time.Since(info.LastHeartbeat) > instanceRemovalTimeout {
			r.client.Del(r.ctx, instanceKey)
			r.removeFromIndices(id)
			removedCount++
		}
	}

	if removedCount > 0 {
		fmt.Printf("Cleanup: removed %d stale instances\n", removedCount)
	}

	return nil
}

func (r *Registry) removeFromIndices(instanceID string) {
	r.client.SRem(r.ctx, instanceIndexKey, instanceID)

	// Instance IDs are formatted as hostname-type
	parts := strings.Split(instanceID, "-")
	if len(parts) >= 2 {
		typeIndexKey := instanceKeyPrefix + parts[len(parts)-1] + ":index"
		r.client.SRem(r.ctx, typeIndexKey, instanceID)
	}
}

// GetSummary returns aggregate statistics about instances
func (r *Registry) GetSummary() (InstanceSummary, error) {
	instances, err := r.ListInstances("", "")
	if err != nil {
		return InstanceSummary{}, err
	}

	summary := InstanceSummary{
		Total:  len(instances),
		ByType: make(map[string]int),
	}

	for _, instance := range instances {
		if instance.Status == StatusOnline {
			summary.Online++
		} else {
			summary.Offline++
		}
		summary.ByType[string(instance.InstanceType)]++
	}

	return summary, nil
}

// GetOrCreateStartTime retrieves the start time for an instance or creates a new one
func (r *Registry) GetOrCreateStartTime(instanceID string) time.Time {
	info, err := r.GetInstance(instanceID)
	if err == nil && !info.StartTime.IsZero() {
		return info.StartTime
	}
	return time.Now()
}

// Close closes the Redis connection
func (r *Registry) Close() error {
	return r.client.Close()
}
