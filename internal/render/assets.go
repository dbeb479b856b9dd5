package render

import "embed"

//go:embed assets
var assetFS embed.FS

// Asset filenames as they appear both in the embedded FS and in the built
// artifact, so the rendered src/href attributes resolve without rewriting.
const (
	LogoAsset  = "logo.svg"
	StyleAsset = "app.css"
)

// Assets returns the embedded static assets keyed by artifact-relative path.
func Assets() (map[string][]byte, error) {
	out := make(map[string][]byte, 2)
	for _, name := range []string{LogoAsset, StyleAsset} {
		data, err := assetFS.ReadFile("assets/" + name)
		if err != nil {
			return nil, err
		}
		out[name] = data
	}
	return out, nil
}
