package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"log"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	update "github.com/inconshreveable/go-update"
	"github.com/urfave/cli"

	"github.com/arvernus/irock-sync/internal/config"
	"github.com/arvernus/irock-sync/internal/generate"
	"github.com/arvernus/irock-sync/internal/registers"
	"github.com/arvernus/irock-sync/internal/release"
	"github.com/arvernus/irock-sync/internal/storage"
	"github.com/arvernus/irock-sync/internal/syncer"
)

type GithubReleaseResponse struct {
	Url    string `json:"url"`
	Assets []struct {
		Name               string `json:"name"`
		BrowserDownloadUrl string `json:"browser_download_url"`
	}
}

var (
	app     *cli.App
	version string

	syncConfig = config.IrockSyncConfig{}
)

func newSyncer(withHistory bool) (s *syncer.Syncer, closer func(), err error) {
	closer = func() {}

	var runs *storage.RunStore
	if withHistory {
		db, dbErr := storage.NewDB(filepath.Join(syncConfig.Sync.Workdir, "irock-sync.db"))
		if dbErr != nil {
			err = dbErr
			return
		}
		closer = func() { db.Close() }
		runs = storage.NewRunStore(db, syncConfig.Sync.MaxRuns)
	}

	s = &syncer.Syncer{
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
		Runs:              runs,
	}
	return
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	var err error
	syncConfig, err = config.LoadConfig()
	if err != nil {
		log.Fatalln("couldn't load config : ", err)
	}
	err = os.MkdirAll(syncConfig.Sync.Workdir, 0755)
	if err != nil {
		log.Fatalln(err)
	}

	app = cli.NewApp()
	app.Name = "irock-sync"
	app.Usage = "iRock Modbus register table synchronizer"
	app.Author = "Arvernus"
	app.Email = "arvernus@posteo.de"
	app.Version = version

	app.Commands = []cli.Command{
		{
			Name:    "sync",
			Aliases: []string{"s"},
			Usage:   "Fetch upstream releases, regenerate register tables and commit",
			Action: func(c *cli.Context) (err error) {
				s, closer, err := newSyncer(true)
				if err != nil {
					return
				}
				defer closer()

				summary, err := s.Run(context.Background(), "manual")
				if err != nil {
					return
				}
				if summary.Changed {
					fmt.Printf("Run %s: %d/%d releases applied, committed %s\n",
						summary.RunUUID, summary.ReleasesApplied, summary.ReleasesSeen, summary.CommitHash)
				} else {
					fmt.Printf("Run %s: %d/%d releases applied, already up to date\n",
						summary.RunUUID, summary.ReleasesApplied, summary.ReleasesSeen)
				}
				return
			},
		},
		{
			Name:  "fetch",
			Usage: "List upstream releases without touching the target file",
			Action: func(c *cli.Context) (err error) {
				client := release.NewClient(
					syncConfig.Sync.GithubAPI,
					syncConfig.Sync.UpstreamOwner,
					syncConfig.Sync.UpstreamRepo,
					syncConfig.Sync.GithubToken,
				)
				releases, err := client.ListReleases(context.Background())
				if err != nil {
					return
				}
				releases = release.Filter(releases, syncConfig.Sync.IncludePrerelease)
				for _, rel := range releases {
					marker := "ok"
					if _, verErr := rel.Version(); verErr != nil {
						marker = "invalid tag"
					} else if rel.Prerelease {
						marker = "prerelease"
					}
					fmt.Printf("%s\t%s\t%s\n", rel.TagName, rel.PublishedAt.Format("2006-01-02"), marker)
				}
				return
			},
		},
		{
			Name:  "generate",
			Usage: "Validate a local data file and print the generated table entry",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "input",
					Usage: "path to a data.yaml file",
				},
			},
			Action: func(c *cli.Context) (err error) {
				input := c.String("input")
				if len(input) < 1 {
					return fmt.Errorf("--input should not be empty")
				}
				data, err := ioutil.ReadFile(input)
				if err != nil {
					return
				}
				table, cellTable, err := registers.Parse(data)
				if err != nil {
					return
				}
				fmt.Println(generate.RenderTableEntry(*table))
				if cellTable != nil {
					fmt.Println(generate.RenderCellTableEntry(*cellTable))
				}
				return
			},
		},
		{
			Name:  "history",
			Usage: "Show recent sync runs",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "limit",
					Usage: "number of runs to show",
					Value: 10,
				},
			},
			Action: func(c *cli.Context) (err error) {
				db, err := storage.NewDB(filepath.Join(syncConfig.Sync.Workdir, "irock-sync.db"))
				if err != nil {
					return
				}
				defer db.Close()

				runs, err := storage.NewRunStore(db, syncConfig.Sync.MaxRuns).GetRecentRuns(c.Int("limit"))
				if err != nil {
					return
				}
				for _, run := range runs {
					commit := run.CommitHash
					if len(commit) < 1 {
						commit = "-"
					}
					fmt.Printf("%s\t%s\t%s\t%d/%d\t%s\n",
						run.RunUUID, run.StartedAt.Format("2006-01-02 15:04:05"),
						run.State, run.ReleasesApplied, run.ReleasesSeen, commit)
				}
				return
			},
		},
		{
			Name:  "update",
			Usage: "Update the irock-sync tool",
			Action: func(c *cli.Context) (err error) {
				var (
					cmdStr          = "/usr/bin/irock-sync --version"
					downloadURL     string
					githubResponse  GithubReleaseResponse
					githubAssetName = "irock-sync"
					url             = "https://api.github.com/repos/arvernus/irock-sync/releases/latest"
				)

				response, err := http.Get(url)
				if err != nil {
					log.Printf("error: %v\n", err)
					return
				}
				defer response.Body.Close()

				body, err := ioutil.ReadAll(response.Body)
				if err != nil {
					log.Printf("error: %v\n", err)
					return
				}

				if err := json.Unmarshal(body, &githubResponse); err != nil {
					log.Printf("error: %v\n", err)
					return err
				}

				for _, asset := range githubResponse.Assets {
					if asset.Name == githubAssetName {
						downloadURL = strings.TrimSuffix(string(asset.BrowserDownloadUrl), "\n")
						break
					}
				}
				if len(downloadURL) < 1 {
					return fmt.Errorf("no %s asset found in the latest release", githubAssetName)
				}

				log.Println(downloadURL)
				log.Println("Self-updating...")

				resp, err := http.Get(downloadURL)
				if err != nil {
					log.Printf("error: %v\n", err)
					return err
				}
				defer resp.Body.Close()

				err = update.Apply(resp.Body, update.Options{})
				if err != nil {
					log.Printf("error: %v\n", err)
					return err
				}

				output, err := exec.Command("bash", "-c", cmdStr).Output()
				if err != nil {
					log.Println(output)
					log.Printf("error: %v\n", err)
				}
				log.Println("Updated to " + strings.TrimSuffix(string(output), "\n"))

				return
			},
		},
	}

	app.Run(os.Args)
}
