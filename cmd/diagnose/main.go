package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/Brownie44l1/plantdx-api/internal/app"
	"github.com/Brownie44l1/plantdx-api/internal/config"
	"github.com/Brownie44l1/plantdx-api/internal/disease"
	"github.com/Brownie44l1/plantdx-api/internal/logger"
)

var (
	configPath = flag.String("config", "", "path to the YAML config file")
	verbose    = flag.Bool("v", false, "log model loading to stdout")
)

type fileResult struct {
	File string `json:"file"`
	disease.Diagnosis
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-config path] [-v] image...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}
	os.Exit(run(flag.Args()))
}

func run(paths []string) int {
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Config validation failed: %v", err)
	}

	l := logger.NewNop()
	if *verbose {
		if l, err = logger.NewZapLogger(cfg.App.LogLevel); err != nil {
			log.Fatalf("Failed to create logger: %v", err)
		}
	}
	defer l.Sync()

	a := app.New(cfg, l)
	defer a.Close()

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	ctx := context.Background()
	exitCode := 0
	for _, path := range paths {
		d := diagnoseFile(ctx, a.Service, path)
		if d.Error != "" {
			exitCode = 1
		}
		if err := enc.Encode(fileResult{File: path, Diagnosis: d}); err != nil {
			log.Fatalf("Failed to write result: %v", err)
		}
	}
	return exitCode
}

func diagnoseFile(ctx context.Context, svc *disease.Service, path string) disease.Diagnosis {
	f, err := os.Open(path)
	if err != nil {
		return svc.Diagnose(ctx, disease.FileSource{Filename: path, Reader: errReader{err}})
	}
	defer f.Close()
	return svc.Diagnose(ctx, disease.FileSource{Filename: path, Reader: f})
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }
