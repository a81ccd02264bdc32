package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ceyewan/dworld/server"
)

func main() {
	fmt.Println("🚀 Starting dworld sync service...")

	s, err := server.New()
	if err != nil {
		fmt.Printf("❌ Failed to start server: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	if err := s.Run(); err != nil {
		fmt.Printf("❌ Server error: %v\n", err)
		os.Exit(1)
	}
	waitForSignal()
}

func waitForSignal() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	<-quit

	fmt.Println("👋 Service exiting")
}
