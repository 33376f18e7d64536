package config

import (
	"io/ioutil"
	"log"
	"os"
	"strings"

	"github.com/ghodss/yaml"
	validator "gopkg.in/go-playground/validator.v9"
)

type IrockSyncConfig struct {
	Redis        string             `json:"redis"`
	Sync         SyncConfig         `json:"sync"`
	Provision    ProvisionConfig    `json:"provision"`
	Monitoring   MonitoringConfig   `json:"monitoring"`
	Notification NotificationConfig `json:"notification"`
	IsTest       bool               `json:"is_test"`
	IsDev        bool               `json:"is_dev"`
}

type SyncConfig struct {
	Workdir            string `json:"workdir" validate:"required"`
	RepoPath           string `json:"repo_path" validate:"required"`          // checkout holding the generated file
	DataFile           string `json:"data_file" validate:"required"`          // dbus-serialbattery/bms/irock.py
	UpstreamOwner      string `json:"upstream_owner" validate:"required"`     // Arvernus
	UpstreamRepo       string `json:"upstream_repo" validate:"required"`      // iRock-Modbus
	GithubAPI          string `json:"github_api"`                             // default https://api.github.com
	GithubToken        string `json:"github_token"`                           // optional, raises rate limit
	CommitMessage      string `json:"commit_message" validate:"required"`     // Update iRock Modbus registers
	CommitAuthorName   string `json:"commit_author_name" validate:"required"` // irock-sync bot
	CommitAuthorEmail  string `json:"commit_author_email" validate:"required"`
	IncludePrerelease  bool   `json:"include_prerelease"`
	MaxRuns            int    `json:"max_runs"` // history rows kept in sqlite
}

type ProvisionConfig struct {
	ArchivePath   string   `json:"archive_path" validate:"required"`   // venus-data.tar.gz
	TargetPath    string   `json:"target_path" validate:"required"`    // /data
	InstallerPath string   `json:"installer_path" validate:"required"` // /data/etc/dbus-serialbattery/reinstall-local.sh
	Packages      []string `json:"packages"`                           // python3-pip python3-venv
	Workdir       string   `json:"workdir" validate:"required"`
}

type MonitoringConfig struct {
	Enabled           bool `json:"enabled"`
	HeartbeatInterval int  `json:"heartbeat_interval"` // seconds
	InstanceTimeout   int  `json:"instance_timeout"`   // seconds
}

type NotificationConfig struct {
	WebhookURL string `json:"webhook_url"`
}

// LoadConfig load irock-sync config from file
func LoadConfig() (config IrockSyncConfig, err error) {
	configPaths := []string{
		"/etc/irock-sync/config.yml",
		"../../utils/config.yml",
		"./utils/config.yml",
	}
	configPath := os.Getenv("IROCK_SYNC_CONFIG_PATH")
	isDev := os.Getenv("DEV") == "1"
	yamlFile, err := ioutil.ReadFile(configPath)
	if err != nil {
		// load from predefined configPaths when no IROCK_SYNC_CONFIG_PATH set
		for _, config := range configPaths {
			yamlFile, err = ioutil.ReadFile(config)
			if err == nil {
				log.Println("load config from : ", config)
				break
			}
		}
		if err != nil {
			return
		}
	}
	if isDev {
		yamlFile, err = ioutil.ReadFile("./utils/config.yml")
		if err != nil {
			return
		}
	}

	err = yaml.Unmarshal(yamlFile, &config)
	if err != nil {
		return
	}

	if isDev {
		// Since it's in dev env, let's move some path to ./tmp
		cwd, _ := os.Getwd()
		tmpDir := cwd + "/tmp/"
		if _, err := os.Stat(tmpDir); os.IsNotExist(err) {
			os.Mkdir(tmpDir, 0755)
		}
		config.Sync.Workdir = strings.ReplaceAll(config.Sync.Workdir, "/var/lib/", tmpDir)
		config.Provision.Workdir = strings.ReplaceAll(config.Provision.Workdir, "/var/lib/", tmpDir)
	}
	config.IsDev = isDev

	if config.Sync.GithubAPI == "" {
		config.Sync.GithubAPI = "https://api.github.com"
	}
	if len(config.Provision.Packages) == 0 {
		config.Provision.Packages = []string{"python3-pip", "python3-venv"}
	}

	validate := validator.New()
	err = validate.Struct(config)

	return
}
