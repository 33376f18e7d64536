package main

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/arvernus/irock-sync/internal/monitoring"
	"github.com/arvernus/irock-sync/internal/release"
	"github.com/arvernus/irock-sync/internal/storage"
	"github.com/arvernus/irock-sync/internal/syncer"
	"github.com/arvernus/irock-sync/pkg/httputil"
)

// SyncWithMonitoring wraps the sync run with active task tracking
func SyncWithMonitoring(triggeredBy string) (string, error) {
	activeTasks++
	defer func() { activeTasks-- }()

	return runSync(triggeredBy)
}

func runSync(triggeredBy string) (string, error) {
	db, err := storage.NewDB(filepath.Join(syncConfig.Sync.Workdir, "irock-sync.db"))
	if err != nil {
		return "", err
	}
	defer db.Close()

	s := &syncer.Syncer{
		Source: release.NewClient(
			syncConfig.Sync.GithubAPI,
			syncConfig.Sync.UpstreamOwner,
			syncConfig.Sync.UpstreamRepo,
			syncConfig.Sync.GithubToken,
		),
		RepoPath:          syncConfig.Sync.RepoPath,
		DataFile:          syncConfig.Sync.DataFile,
		IncludePrerelease: syncConfig.Sync.IncludePrerelease,
		CommitMessage:     syncConfig.Sync.CommitMessage,
		CommitAuthorName:  syncConfig.Sync.CommitAuthorName,
		CommitAuthorEmail: syncConfig.Sync.CommitAuthorEmail,
		WebhookURL:        syncConfig.Notification.WebhookURL,
		Runs:              storage.NewRunStore(db, syncConfig.Sync.MaxRuns),
	}

	summary, err := s.Run(context.Background(), triggeredBy)
	if err != nil {
		return "", err
	}

	if summary.Changed {
		return fmt.Sprintf("run %s committed %s", summary.RunUUID, summary.CommitHash), nil
	}
	return fmt.Sprintf("run %s made no changes", summary.RunUUID), nil
}

func IndexHandler(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintf(w, "irock-syncd")
}

// InstancesHandler lists known worker instances and their health
func InstancesHandler(w http.ResponseWriter, r *http.Request) {
	ttl := time.Duration(syncConfig.Monitoring.InstanceTimeout) * time.Second
	registry, err := monitoring.NewRegistry(syncConfig.Redis, ttl)
	if err != nil {
		httputil.ResponseError("failed to connect to registry: "+err.Error(), http.StatusInternalServerError, w)
		return
	}
	defer registry.Close()

	instances, err := registry.ListInstances("", "")
	if err != nil {
		httputil.ResponseError(err.Error(), http.StatusInternalServerError, w)
		return
	}
	summary, err := registry.GetSummary()
	if err != nil {
		httputil.ResponseError(err.Error(), http.StatusInternalServerError, w)
		return
	}

	httputil.ResponseJSON(monitoring.InstanceListResponse{
		Instances: instances,
		Summary:   summary,
	}, http.StatusOK, w)
}

// RunsHandler lists recent sync runs
func RunsHandler(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); len(v) > 0 {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			httputil.ResponseError("invalid limit", http.StatusBadRequest, w)
			return
		}
		limit = parsed
	}

	db, err := storage.NewDB(filepath.Join(syncConfig.Sync.Workdir, "irock-sync.db"))
	if err != nil {
		httputil.ResponseError(err.Error(), http.StatusInternalServerError, w)
		return
	}
	defer db.Close()

	runs, err := storage.NewRunStore(db, syncConfig.Sync.MaxRuns).GetRecentRuns(limit)
	if err != nil {
		httputil.ResponseError(err.Error(), http.StatusInternalServerError, w)
		return
	}

	httputil.ResponseJSON(runs, http.StatusOK, w)
}
