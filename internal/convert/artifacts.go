package convert

import (
	"os"
	"path/filepath"
	"strings"
)

// artifactExtensions are the files tts2sv writes next to the output prefix.
var artifactExtensions = []string{".musicxml", ".mid", ".ust"}

// Artifact is one expected output file of a run.
type Artifact struct {
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
}

// ExpectedArtifacts lists the output files for prefix. The tool replaces any
// extension on the prefix; relative prefixes resolve against workDir. Only
// existence is checked, never content.
func ExpectedArtifacts(prefix, workDir string) []Artifact {
	return expectedArtifacts(prefix, workDir, os.Stat)
}

func expectedArtifacts(prefix, workDir string, stat func(string) (os.FileInfo, error)) []Artifact {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil
	}
	if !filepath.IsAbs(prefix) && strings.TrimSpace(workDir) != "" {
		prefix = filepath.Join(workDir, prefix)
	}
	base := strings.TrimSuffix(prefix, filepath.Ext(prefix))

	out := make([]Artifact, 0, len(artifactExtensions))
	for _, ext := range artifactExtensions {
		path := base + ext
		info, err := stat(path)
		out = append(out, Artifact{
			Path:   path,
			Exists: err == nil && !info.IsDir(),
		})
	}
	return out
}
