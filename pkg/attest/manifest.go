package attest

import (
	"encoding/json"
	"strings"

	"attestd/internal/domain"
)

// Version identifies this library as the claim generator in manifests.
const Version = "0.1.0"

const MediaTypeJPEG = "image/jpeg"

// Assertion is one labeled claim inside a manifest definition.
type Assertion struct {
	Label string `json:"label"`
	Data  any    `json:"data"`
}

type manifestDefinition struct {
	Title              string               `json:"title"`
	Format             string               `json:"format"`
	ClaimGeneratorInfo []claimGeneratorInfo `json:"claim_generator_info"`
	Assertions         []Assertion          `json:"assertions"`
}

type claimGeneratorInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type actionsData struct {
	Actions []captureAction `json:"actions"`
}

type captureAction struct {
	Action            string        `json:"action"`
	DigitalSourceType string        `json:"digitalSourceType"`
	SoftwareAgent     softwareAgent `json:"softwareAgent"`
}

type softwareAgent struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type creativeWorkData struct {
	Context string           `json:"@context"`
	Type    string           `json:"@type"`
	Author  []creativeAuthor `json:"author"`
}

type creativeAuthor struct {
	Type string `json:"@type"`
	Name string `json:"name"`
}

type exifData struct {
	Context          map[string]string `json:"@context"`
	Make             string            `json:"exif:Make"`
	Model            string            `json:"exif:Model"`
	DateTimeOriginal string            `json:"exif:DateTimeOriginal"`
	GPSVersionID     string            `json:"exif:GPSVersionID,omitempty"`
	GPSLatitude      string            `json:"exif:GPSLatitude,omitempty"`
	GPSLongitude     string            `json:"exif:GPSLongitude,omitempty"`
	GPSTimeStamp     string            `json:"exif:GPSTimeStamp,omitempty"`
}

type deviceData struct {
	DeviceModel string `json:"deviceModel"`
	OSVersion   string `json:"osVersion"`
	TrustLevel  string `json:"trustLevel"`
}

type captureTimeData struct {
	Timestamp string `json:"timestamp"`
}

type trustData struct {
	TrustLevel string `json:"trustLevel"`
	Nonce      string `json:"nonce"`
}

// BuildManifestDefinition renders a capture context as the manifest
// definition JSON the embedder consumes. Pure and deterministic: the same
// context always yields byte-identical output, and assertion order is
// fixed.
func BuildManifestDefinition(capture domain.CaptureContext) (string, error) {
	exif := exifData{
		Context:          map[string]string{"exif": "http://ns.adobe.com/exif/1.0/"},
		Make:             deviceMake(capture.DeviceModel),
		Model:            capture.DeviceModel,
		DateTimeOriginal: capture.CapturedAtISO8601,
	}
	if capture.HasGPS() {
		exif.GPSVersionID = "2.2.0.0"
		exif.GPSLatitude = DecimalToExifDMS(*capture.Latitude, true)
		exif.GPSLongitude = DecimalToExifDMS(*capture.Longitude, false)
		exif.GPSTimeStamp = capture.CapturedAtISO8601
	}

	assertions := []Assertion{
		{
			Label: "c2pa.actions",
			Data: actionsData{
				Actions: []captureAction{{
					Action:            "c2pa.created",
					DigitalSourceType: "http://cv.iptc.org/newscodes/digitalsourcetype/digitalCapture",
					SoftwareAgent:     softwareAgent{Name: capture.AppName, Version: Version},
				}},
			},
		},
		{
			Label: "stds.schema-org.CreativeWork",
			Data: creativeWorkData{
				Context: "https://schema.org",
				Type:    "CreativeWork",
				Author:  []creativeAuthor{{Type: "Organization", Name: capture.AppName}},
			},
		},
		{
			Label: "stds.exif",
			Data:  exif,
		},
		{
			Label: "attestation.device",
			Data: deviceData{
				DeviceModel: capture.DeviceModel,
				OSVersion:   capture.OSVersion,
				TrustLevel:  capture.TrustLevel,
			},
		},
		{
			Label: "attestation.capture_time",
			Data:  captureTimeData{Timestamp: capture.CapturedAtISO8601},
		},
	}

	if capture.Nonce != nil {
		assertions = append(assertions, Assertion{
			Label: "attestation.trust",
			Data:  trustData{TrustLevel: capture.TrustLevel, Nonce: *capture.Nonce},
		})
	}

	definition := manifestDefinition{
		Title:              "Attested Photo " + capture.CapturedAtISO8601,
		Format:             MediaTypeJPEG,
		ClaimGeneratorInfo: []claimGeneratorInfo{{Name: capture.AppName, Version: Version}},
		Assertions:         assertions,
	}
	payload, err := json.Marshal(definition)
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

// deviceMake derives the manufacturer from a device model string: the
// first whitespace-delimited token, or the whole string when there is
// none.
func deviceMake(deviceModel string) string {
	fields := strings.Fields(deviceModel)
	if len(fields) == 0 {
		return deviceModel
	}
	return fields[0]
}
