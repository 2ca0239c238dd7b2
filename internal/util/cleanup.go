package util

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// SetupInterruptHandler removes the partially written container on SIGINT or
// SIGTERM so an aborted conversion never leaves a truncated file behind.
func SetupInterruptHandler(partPath string) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sig
		fmt.Println("\nInterrupt received. Cleaning up...")

		if partPath != "" {
			if err := os.Remove(partPath); err == nil {
				fmt.Println("Removed partial output:", partPath)
			}
		}

		fmt.Println("Exiting due to interrupt.")
		os.Exit(1)
	}()
}
