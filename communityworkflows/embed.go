// Package communityworkflows embeds sample workflow definitions.
//
// The samples are imported into the local store by "bytechef workflows
// samples". Each file under workflows/ is one workflow; the extension
// selects its format.
package communityworkflows

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/vihar-s1/bytechef/internal/workflow/domain"
)

//go:embed workflows
var sampleFiles embed.FS

// Sample is one embedded workflow definition.
type Sample struct {
	// Name is the file name without extension.
	Name       string
	Format     domain.Format
	Definition string
}

// FS returns the embedded filesystem. Samples live under workflows/.
func FS() fs.FS {
	return sampleFiles
}

// Samples returns the embedded samples sorted by name.
func Samples() ([]Sample, error) {
	entries, err := fs.ReadDir(sampleFiles, "workflows")
	if err != nil {
		return nil, fmt.Errorf("reading samples: %w", err)
	}

	samples := make([]Sample, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		format, err := domain.FormatFromExtension(e.Name())
		if err != nil {
			continue
		}
		data, err := fs.ReadFile(sampleFiles, path.Join("workflows", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading sample %s: %w", e.Name(), err)
		}
		samples = append(samples, Sample{
			Name:       strings.TrimSuffix(e.Name(), path.Ext(e.Name())),
			Format:     format,
			Definition: string(data),
		})
	}

	sort.Slice(samples, func(i, j int) bool { return samples[i].Name < samples[j].Name })
	return samples, nil
}
