package catalog

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/coursehub/internal/domain/learning"
)

// CatalogPathEnv points at a YAML file that replaces the embedded seed catalog.
const CatalogPathEnv = "COURSEHUB_CATALOG_YAML"

//go:embed catalog.yaml
var seedFS embed.FS

type yamlCatalog struct {
	Courses []learning.Course `yaml:"courses"`
}

// Load returns the seed catalog, from CatalogPathEnv when set and from the
// embedded file otherwise. Every course has its progress derived from sessions.
func Load() ([]learning.Course, error) {
	data, err := read()
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// MustLoad is for callers that ship the embedded catalog and cannot continue without it.
func MustLoad() []learning.Course {
	courses, err := Load()
	if err != nil {
		panic(fmt.Sprintf("catalog: %v", err))
	}
	return courses
}

func Parse(data []byte) ([]learning.Course, error) {
	var doc yamlCatalog
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	if len(doc.Courses) == 0 {
		return nil, errors.New("catalog: no courses defined")
	}
	seen := make(map[string]struct{}, len(doc.Courses))
	for i := range doc.Courses {
		c := &doc.Courses[i]
		c.ID = strings.TrimSpace(c.ID)
		if d, err := learning.ParseDifficulty(string(c.Difficulty)); err == nil {
			c.Difficulty = d
		}
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		if _, dup := seen[c.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate course id %q", c.ID)
		}
		seen[c.ID] = struct{}{}
		c.RecomputeProgress()
	}
	return doc.Courses, nil
}

func read() ([]byte, error) {
	if path := strings.TrimSpace(os.Getenv(CatalogPathEnv)); path != "" {
		return os.ReadFile(path)
	}
	return seedFS.ReadFile("catalog.yaml")
}
