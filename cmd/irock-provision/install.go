package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/manifoldco/promptui"

	"github.com/arvernus/irock-sync/pkg/systemutil"
)

// Install provisions the device: installs the python dependencies,
// unpacks the driver archive and hands over to the driver's own
// installer. Steps run in order and the first failure aborts the rest.
func Install(skipPrompt bool) (err error) {
	logPath := syncConfig.Provision.Workdir
	logPath += "/irock-provision-install-" + uuid.New().String() + ".log"
	go systemutil.StreamLog(logPath)

	fmt.Println("WARNING: This subcommand need to be run under root or sudo.")
	if !skipPrompt {
		prompt := promptui.Prompt{
			Label:     "irock-provision install will install packages and overwrite " + syncConfig.Provision.TargetPath + " on this device. Are you sure?",
			IsConfirm: true,
		}
		result, promptErr := prompt.Run()
		// Avoid shadowed err
		err = promptErr
		if err != nil {
			return
		}
		if strings.ToLower(result) != "y" {
			return
		}
	}

	_ = systemutil.WriteLog(logPath, "Installing python dependencies...")

	cmdStr := "opkg update && opkg install " + strings.Join(syncConfig.Provision.Packages, " ")
	_, err = systemutil.CmdExec(
		cmdStr,
		"Installing "+strings.Join(syncConfig.Provision.Packages, " "),
		logPath,
	)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}

	_ = systemutil.WriteLog(logPath, "Unpacking driver archive...")

	cmdStr = "tar -xzf " + syncConfig.Provision.ArchivePath + " -C " + syncConfig.Provision.TargetPath
	_, err = systemutil.CmdExec(
		cmdStr,
		"Unpacking "+syncConfig.Provision.ArchivePath+" to "+syncConfig.Provision.TargetPath,
		logPath,
	)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}

	_ = systemutil.WriteLog(logPath, "Running driver installer...")

	cmdStr = "bash " + syncConfig.Provision.InstallerPath
	_, err = systemutil.CmdExec(
		cmdStr,
		"Running "+syncConfig.Provision.InstallerPath,
		logPath,
	)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}

	fmt.Println("Done.")

	return
}

// Check verifies the provisioned state without changing anything
func Check() (err error) {
	failures := 0

	for _, pkg := range syncConfig.Provision.Packages {
		cmdStr := "opkg status " + pkg + " | grep -q 'Status:.*installed'"
		_, pkgErr := systemutil.CmdExec(cmdStr, "", "")
		if pkgErr != nil {
			fmt.Printf("MISSING\tpackage %s\n", pkg)
			failures++
		} else {
			fmt.Printf("ok\tpackage %s\n", pkg)
		}
	}

	for _, path := range []string{
		syncConfig.Provision.ArchivePath,
		syncConfig.Provision.TargetPath,
		syncConfig.Provision.InstallerPath,
	} {
		if _, statErr := os.Stat(path); statErr != nil {
			fmt.Printf("MISSING\t%s\n", path)
			failures++
		} else {
			fmt.Printf("ok\t%s\n", path)
		}
	}

	if failures > 0 {
		err = fmt.Errorf("%d check(s) failed", failures)
	}

	return
}
