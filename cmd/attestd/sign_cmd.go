package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"attestd/internal/domain"
	"attestd/internal/infra/embed"
	"attestd/internal/infra/keys/soft"
	"attestd/pkg/attest"
)

func runSign(args []string) int {
	fs := flag.NewFlagSet("sign", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var inPath string
	var outPath string
	var manifestOut string
	var keyPath string
	var certPath string
	var appName string
	var deviceModel string
	var osVersion string
	var capturedAt string
	var trustLevel string
	var nonce string
	var latStr string
	var lonStr string
	fs.StringVar(&inPath, "in", "", "input JPEG path")
	fs.StringVar(&outPath, "out", "", "signed JPEG output path (default stdout)")
	fs.StringVar(&manifestOut, "manifest-out", "", "manifest JSON output path")
	fs.StringVar(&keyPath, "key", "", "EC private key PEM path")
	fs.StringVar(&certPath, "cert", "", "certificate PEM path")
	fs.StringVar(&appName, "app-name", "attestd", "claim generator name")
	fs.StringVar(&deviceModel, "device-model", "", "capture device model")
	fs.StringVar(&osVersion, "os-version", "", "capture OS version")
	fs.StringVar(&capturedAt, "captured-at", "", "capture timestamp, RFC 3339")
	fs.StringVar(&trustLevel, "trust-level", "software", "capture trust level")
	fs.StringVar(&nonce, "nonce", "", "anti-replay nonce")
	fs.StringVar(&latStr, "lat", "", "capture latitude, decimal degrees")
	fs.StringVar(&lonStr, "lon", "", "capture longitude, decimal degrees")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if inPath == "" || deviceModel == "" || osVersion == "" || capturedAt == "" {
		fmt.Fprintln(os.Stderr, "sign requires --in, --device-model, --os-version, and --captured-at")
		return 1
	}
	if (keyPath == "") != (certPath == "") {
		fmt.Fprintln(os.Stderr, "sign requires --key and --cert together")
		return 1
	}

	jpeg, err := os.ReadFile(inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read photo: %v\n", err)
		return 1
	}

	capture := domain.CaptureContext{
		AppName:           appName,
		DeviceModel:       deviceModel,
		OSVersion:         osVersion,
		CapturedAtISO8601: capturedAt,
		TrustLevel:        trustLevel,
	}
	if nonce != "" {
		capture.Nonce = &nonce
	}
	if latStr != "" {
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "parse latitude: %v\n", err)
			return 1
		}
		capture.Latitude = &lat
	}
	if lonStr != "" {
		lon, err := strconv.ParseFloat(lonStr, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "parse longitude: %v\n", err)
			return 1
		}
		capture.Longitude = &lon
	}

	var signer *soft.Signer
	if keyPath != "" {
		signer, err = soft.LoadFromFiles(keyPath, certPath)
	} else {
		signer, err = soft.NewGenerated(appName)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "load signer: %v\n", err)
		return 1
	}

	pipeline := &attest.Pipeline{Embedder: embed.New()}
	signed, err := pipeline.BuildAndSignC2PA(jpeg, capture, signer)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sign photo: %v\n", err)
		return 1
	}

	if manifestOut != "" {
		if err := os.WriteFile(manifestOut, []byte(signed.ManifestJSON), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "write manifest: %v\n", err)
			return 1
		}
	}
	if outPath == "" {
		if _, err := os.Stdout.Write(signed.SignedJPEG); err != nil {
			fmt.Fprintf(os.Stderr, "write output: %v\n", err)
			return 1
		}
		return 0
	}
	if err := os.WriteFile(outPath, signed.SignedJPEG, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write output: %v\n", err)
		return 1
	}
	return 0
}
