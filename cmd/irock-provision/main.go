package main

import (
	"log"
	"os"

	"github.com/urfave/cli"

	"github.com/arvernus/irock-sync/internal/config"
)

var (
	app     *cli.App
	version string

	syncConfig = config.IrockSyncConfig{}
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	var err error
	syncConfig, err = config.LoadConfig()
	if err != nil {
		log.Fatalln("couldn't load config : ", err)
	}
	err = os.MkdirAll(syncConfig.Provision.Workdir, 0755)
	if err != nil {
		log.Fatalln(err)
	}

	app = cli.NewApp()
	app.Name = "irock-provision"
	app.Usage = "iRock battery driver device provisioner"
	app.Author = "Arvernus"
	app.Email = "arvernus@posteo.de"
	app.Version = version

	app.Commands = []cli.Command{
		{
			Name:    "install",
			Aliases: []string{"i"},
			Usage:   "Install the battery driver and its dependencies on this device",
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "yes",
					Usage: "skip the confirmation prompt",
				},
			},
			Action: func(c *cli.Context) error {
				return Install(c.Bool("yes"))
			},
		},
		{
			Name:  "check",
			Usage: "Verify that the driver files and dependencies are in place",
			Action: func(c *cli.Context) error {
				return Check()
			},
		},
	}

	app.Run(os.Args)
}
