package main

import (
	"errors"
	"flag"
	"log"
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
)

type configuration struct {
	PodmanSocket string
	SourceDir    string
	Versions     string
}

var cfg configuration

func (c configuration) Validate() error {
	if c.PodmanSocket == "" {
		return errors.New("podman socket is empty")
	}
	if c.SourceDir == "" {
		return errors.New("source directory is empty")
	}
	info, err := os.Stat(c.SourceDir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return errors.New("source path is not a directory")
	}
	return nil
}

func main() {
	flag.StringVar(&cfg.PodmanSocket, "podman-socket", "unix:///run/user/1000/podman/podman.sock", "Podman socket path")
	flag.StringVar(&cfg.SourceDir, "source", "../../testdata/helloapp", "Path to the project under test")
	flag.StringVar(&cfg.Versions, "versions", "3.10,3.11,3.12", "Python versions for the matrix scenario")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	zap.ReplaceGlobals(logger)
	defer logger.Sync()

	if abs, err := filepath.Abs(cfg.SourceDir); err == nil {
		cfg.SourceDir = abs
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("failed to validate configuration: %v", err)
	}

	RegisterFailHandler(Fail)
	if !RunSpecs(&testing.T{}, "E2E Suite") {
		os.Exit(1)
	}
}
