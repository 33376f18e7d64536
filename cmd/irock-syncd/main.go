package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	machinery "github.com/RichardKnop/machinery/v1"
	"github.com/RichardKnop/machinery/v1/backends/result"
	machineryConfig "github.com/RichardKnop/machinery/v1/config"
	"github.com/RichardKnop/machinery/v1/tasks"
	"github.com/google/uuid"
	"github.com/urfave/cli"

	"github.com/arvernus/irock-sync/internal/config"
	"github.com/arvernus/irock-sync/internal/monitoring"
)

var (
	app     *cli.App
	server  *machinery.Server
	version string

	syncConfig = config.IrockSyncConfig{}

	activeTasks int = 0
)

func newMachineryServer() (*machinery.Server, error) {
	return machinery.NewServer(
		&machineryConfig.Config{
			Broker:        syncConfig.Redis,
			ResultBackend: syncConfig.Redis,
			DefaultQueue:  "irock",
		},
	)
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
	app.Name = "irock-syncd"
	app.Usage = "iRock register table sync worker"
	app.Author = "Arvernus"
	app.Email = "arvernus@posteo.de"
	app.Version = version

	app.Commands = []cli.Command{
		{
			Name:  "dispatch",
			Usage: "Queue a sync run on the worker",
			Action: func(c *cli.Context) (err error) {
				server, err = newMachineryServer()
				if err != nil {
					return
				}

				signature := tasks.Signature{
					Name: "sync",
					UUID: uuid.New().String(),
					Args: []tasks.Arg{
						{
							Type:  "string",
							Value: "daemon",
						},
					},
				}
				_, err = server.SendTask(&signature)
				if err != nil {
					return
				}
				fmt.Println("SyncTaskUUID : " + signature.UUID)
				return
			},
		},
		{
			Name:  "status",
			Usage: "Show the state of a queued sync run",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "uuid",
					Usage: "task UUID returned by dispatch",
				},
			},
			Action: func(c *cli.Context) (err error) {
				taskUUID := c.String("uuid")
				if len(taskUUID) < 1 {
					return fmt.Errorf("--uuid should not be empty")
				}

				server, err = newMachineryServer()
				if err != nil {
					return
				}

				signature := tasks.Signature{
					Name: "sync",
					UUID: taskUUID,
				}
				asyncResult := result.NewAsyncResult(&signature, server.GetBackend())
				asyncResult.Touch()
				taskState := asyncResult.GetState()
				fmt.Printf("%s : %s\n", taskState.TaskUUID, taskState.State)
				return
			},
		},
	}

	app.Action = func(c *cli.Context) error {

		go serve()

		if syncConfig.Monitoring.Enabled {
			go startMonitoringHeartbeat()
		}

		server, err = newMachineryServer()
		if err != nil {
			fmt.Println("Could not create server : " + err.Error())
		}

		server.RegisterTask("sync", SyncWithMonitoring)

		worker := server.NewWorker("syncer", 1)
		err = worker.Launch()
		if err != nil {
			fmt.Println("Could not launch worker : " + err.Error())
		}

		return nil

	}
	app.Run(os.Args)
}

// startMonitoringHeartbeat sends periodic heartbeats to Redis
func startMonitoringHeartbeat() {
	ttl := time.Duration(syncConfig.Monitoring.InstanceTimeout) * time.Second
	registry, err := monitoring.NewRegistry(syncConfig.Redis, ttl)
	if err != nil {
		log.Printf("Failed to create monitoring registry: %v\n", err)
		return
	}
	defer registry.Close()

	instanceID := monitoring.GenerateInstanceID(monitoring.InstanceTypeSyncer)
	startTime := registry.GetOrCreateStartTime(instanceID)

	interval := time.Duration(syncConfig.Monitoring.HeartbeatInterval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Prune instances that stopped heartbeating and their index entries
	cleanupTicker := time.NewTicker(1 * time.Hour)
	defer cleanupTicker.Stop()

	log.Printf("Monitoring heartbeat started (instance: %s, interval: %v)\n", instanceID, interval)

	sendHeartbeat(registry, instanceID, startTime)

	for {
		select {
		case <-ticker.C:
			sendHeartbeat(registry, instanceID, startTime)
		case <-cleanupTicker.C:
			if err := registry.CleanupStaleInstances(); err != nil {
				log.Printf("Failed to cleanup stale instances: %v\n", err)
			}
		}
	}
}

func sendHeartbeat(registry *monitoring.Registry, instanceID string, startTime time.Time) {
	metrics := monitoring.CollectMetrics(syncConfig.Sync.Workdir)

	instance := monitoring.InstanceInfo{
		InstanceID:    instanceID,
		InstanceType:  monitoring.InstanceTypeSyncer,
		Hostname:      monitoring.GetHostname(),
		PID:           os.Getpid(),
		StartTime:     startTime,
		LastHeartbeat: time.Now(),
		Status:        monitoring.StatusOnline,
		ActiveTasks:   activeTasks,
		CPUUsage:      metrics.CPUUsage,
		MemoryUsage:   metrics.MemoryUsage,
		MemoryTotal:   metrics.MemoryTotal,
		DiskUsage:     metrics.DiskUsage,
		DiskTotal:     metrics.DiskTotal,
		Version:       monitoring.GetVersion(),
	}

	if err := registry.UpdateInstance(instance); err != nil {
		log.Printf("Failed to send heartbeat: %v\n", err)
	}
}

func serve() {
	port := os.Getenv("PORT")
	if len(port) < 1 {
		port = "8082"
	}
	http.HandleFunc("/", IndexHandler)
	http.HandleFunc("/instances", InstancesHandler)
	http.HandleFunc("/runs", RunsHandler)
	log.Println("irock-syncd now live on port " + port)
	log.Fatal(http.ListenAndServe(":"+port, nil))
}
