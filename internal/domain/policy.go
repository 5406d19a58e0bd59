package domain

// PolicyInput is the document handed to the capture policy engine before a
// photo is signed.
type PolicyInput struct {
	Capture     CaptureContext `json:"capture"`
	MediaType   string         `json:"media_type"`
	AssetSHA256 string         `json:"asset_sha256"`
}

type PolicyDenial struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

type PolicyResult struct {
	Allow bool           `json:"allow"`
	Deny  []PolicyDenial `json:"deny,omitempty"`
}

type PolicyEvaluation struct {
	BundleID   string
	BundleHash string
	Result     PolicyResult
}
