package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"attestd/pkg/attest"
)

func runHash(args []string) int {
	fs := flag.NewFlagSet("hash", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var inPath string
	var outPath string
	fs.StringVar(&inPath, "in", "", "input photo path")
	fs.StringVar(&outPath, "out", "", "output JSON path (default stdout)")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if inPath == "" {
		fmt.Fprintln(os.Stderr, "hash requires --in")
		return 1
	}

	frame, err := os.ReadFile(inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read photo: %v\n", err)
		return 1
	}

	result := attest.HashFrameBytes(frame)
	payload, err := json.Marshal(map[string]string{"asset_sha256": result.SHA256Hex})
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal hash: %v\n", err)
		return 1
	}
	if err := writeOutput(outPath, payload); err != nil {
		fmt.Fprintf(os.Stderr, "write output: %v\n", err)
		return 1
	}
	return 0
}
