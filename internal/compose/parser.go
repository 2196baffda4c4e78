// Package compose extracts monitored images from docker-compose files.
package compose

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	yaml "gopkg.in/yaml.v3"

	"github.com/user/registry-watch/internal/docker"
	"github.com/user/registry-watch/pkg/errors"
	"github.com/user/registry-watch/pkg/types"
)

// composeFile mirrors the subset of the compose schema we read.
type composeFile struct {
	Services map[string]composeService `yaml:"services"`
}

type composeService struct {
	Image string `yaml:"image"`
}

// Parser extracts image references from compose files.
type Parser struct{}

// NewParser creates a compose parser.
func NewParser() *Parser {
	return &Parser{}
}

// CanParse reports whether the file name matches the standard compose
// naming patterns.
func (p *Parser) CanParse(filePath string) bool {
	name := filepath.Base(filePath)
	switch name {
	case "docker-compose.yml", "docker-compose.yaml", "compose.yml", "compose.yaml":
		return true
	}
	return strings.HasPrefix(name, "docker-compose.") &&
		(strings.HasSuffix(name, ".yml") || strings.HasSuffix(name, ".yaml"))
}

// ParseFile reads a compose file and returns one monitored-image entry per
// service that names an image. Services built from a Dockerfile and
// digest-pinned images are skipped.
func (p *Parser) ParseFile(filePath string) ([]types.MonitoredImage, error) {
	data, err := os.ReadFile(filePath) //nolint:gosec
	if err != nil {
		return nil, errors.Wrapf("compose.ParseFile", err, "reading file %s", filePath)
	}

	var doc composeFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf("compose.ParseFile", err, "parsing YAML file %s", filePath)
	}

	// Deterministic order regardless of map iteration.
	names := make([]string, 0, len(doc.Services))
	for name := range doc.Services {
		names = append(names, name)
	}
	sort.Strings(names)

	var images []types.MonitoredImage
	for _, serviceName := range names {
		service := doc.Services[serviceName]
		if service.Image == "" {
			continue
		}
		img, ok := docker.ParseImageString(service.Image)
		if !ok {
			continue
		}
		img.Name = serviceName
		images = append(images, img)
	}

	return images, nil
}
