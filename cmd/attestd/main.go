package main

import (
	"fmt"
	"os"
	"path/filepath"
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	if len(args) < 2 {
		usage(args)
		return 1
	}

	switch args[1] {
	case "sign":
		return runSign(args[2:])
	case "hash":
		return runHash(args[2:])
	case "placeholder":
		return runPlaceholder(args[2:])
	case "serve":
		return runServe(args[2:])
	}

	usage(args)
	return 1
}

func usage(args []string) {
	name := "attestd"
	if len(args) > 0 && args[0] != "" {
		name = filepath.Base(args[0])
	}
	fmt.Fprintf(os.Stderr, "usage:\n")
	fmt.Fprintf(os.Stderr, "  %s sign --in <photo.jpg> --device-model <model> --os-version <version> --captured-at <rfc3339> [--app-name <name>] [--trust-level <level>] [--nonce <nonce>] [--lat <deg> --lon <deg>] [--key <key.pem> --cert <cert.pem>] [--out <file>] [--manifest-out <file>]\n", name)
	fmt.Fprintf(os.Stderr, "  %s hash --in <photo.jpg> [--out <file>]\n", name)
	fmt.Fprintf(os.Stderr, "  %s placeholder --in <photo.jpg> --signature-base64 <b64> [--metadata <json>] [--out <file>]\n", name)
	fmt.Fprintf(os.Stderr, "  %s serve\n", name)
}
