package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"alfredoptarigan/resume-analyzer/internal/bootstrap"
	"alfredoptarigan/resume-analyzer/internal/config"
)

// Runs the analyze flow (and optionally the improve flow) on a local résumé.
func main() {
	improve := flag.Bool("improve", false, "also generate the improved résumé")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: analyze_resume [-improve] <resume.pdf|resume.docx>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	cfg := config.Load()
	components, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize services: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("❌ Failed to read %s: %v", path, err)
	}

	// The pipeline deletes its input, so it works on a copy.
	name := filepath.Base(path)
	doc, err := components.Storage.SaveBytes(name, mime.TypeByExtension(filepath.Ext(name)), data)
	if err != nil {
		log.Fatalf("❌ Failed to stage %s: %v", path, err)
	}

	ctx := context.Background()
	result, err := components.Pipeline.Analyze(ctx, doc)
	if err != nil {
		log.Fatalf("❌ Analysis failed: %v", err)
	}

	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Model: %s\n", result.Model)
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println(result.Analysis)

	if !*improve {
		return
	}

	improved, err := components.Pipeline.Improve(ctx, result.ExtractedText, result.Analysis)
	if err != nil {
		log.Fatalf("❌ Improved résumé generation failed: %v", err)
	}

	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("Improved résumé")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println(improved.ImprovedResume)
}
