package syncer

import (
	"context"
	"errors"
	"fmt"
	"io/ioutil"
	"log"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/arvernus/irock-sync/internal/archive"
	"github.com/arvernus/irock-sync/internal/generate"
	"github.com/arvernus/irock-sync/internal/gitops"
	"github.com/arvernus/irock-sync/internal/notification"
	"github.com/arvernus/irock-sync/internal/registers"
	"github.com/arvernus/irock-sync/internal/release"
	"github.com/arvernus/irock-sync/internal/storage"
)

// DataFileName is the register definition shipped inside each release zipball
const DataFileName = "data.yaml"

// ReleaseSource lists upstream releases and fetches their archives
type ReleaseSource interface {
	ListReleases(ctx context.Context) ([]release.Release, error)
	DownloadZipball(ctx context.Context, rel release.Release) ([]byte, error)
}

// Syncer runs the release-to-commit pipeline
type Syncer struct {
	Source            ReleaseSource
	RepoPath          string
	DataFile          string // path of the generated file, relative to RepoPath
	IncludePrerelease bool
	CommitMessage     string
	CommitAuthorName  string
	CommitAuthorEmail string
	WebhookURL        string

	// Optional run history, nil disables persistence
	Runs *storage.RunStore
}

// Summary describes the outcome of one sync run
type Summary struct {
	RunUUID         string
	ReleasesSeen    int
	ReleasesApplied int
	Skipped         []string
	CommitHash      string
	Changed         bool
}

// Run fetches all upstream releases, regenerates the register tables in
// the target file and commits the result. When the generated content is
// identical to what is already committed, no commit is created.
func (s *Syncer) Run(ctx context.Context, triggeredBy string) (*Summary, error) {
	summary := &Summary{RunUUID: uuid.New().String()}
	startedAt := time.Now().UTC()

	s.recordRun(storage.RunInfo{
		RunUUID:     summary.RunUUID,
		TriggeredBy: triggeredBy,
		StartedAt:   startedAt,
		State:       "STARTED",
	})

	err := s.run(ctx, summary)

	state := "SUCCESS"
	errText := ""
	if err != nil {
		state = "FAILURE"
		errText = err.Error()
	}
	finishedAt := time.Now().UTC()
	s.recordRun(storage.RunInfo{
		RunUUID:         summary.RunUUID,
		TriggeredBy:     triggeredBy,
		StartedAt:       startedAt,
		FinishedAt:      &finishedAt,
		State:           state,
		ReleasesSeen:    summary.ReleasesSeen,
		ReleasesApplied: summary.ReleasesApplied,
		CommitHash:      summary.CommitHash,
		Error:           errText,
	})

	notification.SendSyncNotification(s.WebhookURL, state, notification.SyncNotificationInfo{
		RunUUID:         summary.RunUUID,
		ReleasesSeen:    summary.ReleasesSeen,
		ReleasesApplied: summary.ReleasesApplied,
		CommitHash:      summary.CommitHash,
		Changed:         summary.Changed,
	})

	if err != nil {
		return summary, err
	}
	return summary, nil
}

func (s *Syncer) run(ctx context.Context, summary *Summary) error {
	releases, err := s.Source.ListReleases(ctx)
	if err != nil {
		return fmt.Errorf("failed to list releases: %w", err)
	}

	releases = release.Filter(releases, s.IncludePrerelease)
	summary.ReleasesSeen = len(releases)
	if len(releases) == 0 {
		return fmt.Errorf("no published releases found")
	}

	tables, cellTables := s.collectTables(ctx, releases, summary)
	if summary.ReleasesApplied == 0 {
		return fmt.Errorf("no usable releases, all %d were skipped", len(releases))
	}

	targetPath := filepath.Join(s.RepoPath, s.DataFile)
	current, err := ioutil.ReadFile(targetPath)
	if err != nil {
		return fmt.Errorf("failed to read target file: %w", err)
	}

	rendered, err := generate.RenderFile(string(current), tables, cellTables)
	if err != nil {
		return fmt.Errorf("failed to render target file: %w", err)
	}

	if rendered != string(current) {
		if err := ioutil.WriteFile(targetPath, []byte(rendered), 0644); err != nil {
			return fmt.Errorf("failed to write target file: %w", err)
		}
	}

	committer := &gitops.Committer{
		RepoPath:    s.RepoPath,
		AuthorName:  s.CommitAuthorName,
		AuthorEmail: s.CommitAuthorEmail,
	}
	hash, err := committer.CommitIfChanged(s.DataFile, s.CommitMessage)
	if errors.Is(err, gitops.ErrNoChanges) {
		log.Println("Register tables already up to date, nothing to commit")
		return nil
	}
	if err != nil {
		return err
	}

	summary.CommitHash = hash
	summary.Changed = true
	log.Printf("Committed updated register tables as %s\n", hash)

	return nil
}

// collectTables parses every release it can, skipping broken ones so a
// single bad upload upstream never blocks the whole sync.
func (s *Syncer) collectTables(ctx context.Context, releases []release.Release, summary *Summary) ([]registers.Table, []registers.CellTable) {
	var tables []registers.Table
	var cellTables []registers.CellTable

	for _, rel := range releases {
		table, cellTable, err := s.processRelease(ctx, rel)
		if err != nil {
			log.Printf("Skipping release %s: %v\n", rel.TagName, err)
			summary.Skipped = append(summary.Skipped, rel.TagName)
			continue
		}

		tables = append(tables, *table)
		if cellTable != nil {
			cellTables = append(cellTables, *cellTable)
		}
		summary.ReleasesApplied++
	}

	return tables, cellTables
}

func (s *Syncer) processRelease(ctx context.Context, rel release.Release) (*registers.Table, *registers.CellTable, error) {
	if _, err := rel.Version(); err != nil {
		return nil, nil, fmt.Errorf("invalid release tag: %w", err)
	}

	zipball, err := s.Source.DownloadZipball(ctx, rel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to download zipball: %w", err)
	}

	data, err := archive.ExtractFile(zipball, DataFileName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to extract %s: %w", DataFileName, err)
	}

	return registers.Parse(data)
}

func (s *Syncer) recordRun(run storage.RunInfo) {
	if s.Runs == nil {
		return
	}
	if err := s.Runs.RecordRun(run); err != nil {
		log.Printf("Failed to record run %s: %v\n", run.RunUUID, err)
	}
}
