package main

import (
	"flag"
	"fmt"
	"os"

	"attestd/pkg/attest"
)

func runPlaceholder(args []string) int {
	fs := flag.NewFlagSet("placeholder", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var inPath string
	var outPath string
	var signatureBase64 string
	var metadata string
	fs.StringVar(&inPath, "in", "", "input JPEG path")
	fs.StringVar(&outPath, "out", "", "output JSON path (default stdout)")
	fs.StringVar(&signatureBase64, "signature-base64", "", "externally produced signature, base64")
	fs.StringVar(&metadata, "metadata", "{}", "manifest metadata, inline JSON")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if inPath == "" || signatureBase64 == "" {
		fmt.Fprintln(os.Stderr, "placeholder requires --in and --signature-base64")
		return 1
	}

	jpeg, err := os.ReadFile(inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read photo: %v\n", err)
		return 1
	}

	artifact := attest.BuildC2PAPlaceholder(jpeg, signatureBase64, metadata)
	if err := writeOutput(outPath, []byte(artifact.ManifestJSON)); err != nil {
		fmt.Fprintf(os.Stderr, "write output: %v\n", err)
		return 1
	}
	return 0
}
