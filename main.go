package main

import (
	"log"
	"os"
	"strings"

	"onefile/cmd"
	"onefile/pkg/logging"
	"onefile/pkg/version"

	"golang.org/x/term"
)

func main() {
	logger, err := logging.Setup(false, "onefile", version.Version)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	exitCode := 0
	if err := cmd.Execute(logger); err != nil {
		exitCode = 1
	}

	// Syncing stderr fails with EINVAL when it is not a real file; only
	// attempt it for terminals and regular files.
	if term.IsTerminal(int(os.Stderr.Fd())) || isRegularFile(os.Stderr) {
		if syncErr := logger.Sync(); syncErr != nil {
			if !strings.Contains(strings.ToLower(syncErr.Error()), "invalid argument") {
				log.Printf("Logger sync failed: %v", syncErr)
			}
		}
	}

	os.Exit(exitCode)
}

// isRegularFile checks if the given file is a regular file.
func isRegularFile(f *os.File) bool {
	fileInfo, err := f.Stat()
	if err != nil {
		return false
	}
	return fileInfo.Mode().IsRegular()
}
