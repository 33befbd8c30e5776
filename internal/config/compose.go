package config

import (
	"fmt"
	"os"

	"github.com/google/go-containerregistry/pkg/name"
	"gopkg.in/yaml.v3"

	"github.com/verilab/harnessctl/internal/errors"
)

// Service is one containerized workload declared in a data point's compose
// file. A service either names a published image or carries build
// instructions; build details stay opaque to us, compose interprets them.
type Service struct {
	Name  string
	Image string
}

// HasImage reports whether the service names a published image to pull.
// When false the image is rebuilt from the service's build context.
func (s Service) HasImage() bool {
	return s.Image != ""
}

// HarnessConfig is the parsed per-data-point configuration. Services keeps
// the compose file's declaration order: later services may depend on
// artifacts earlier ones left in the shared run directory.
type HarnessConfig struct {
	Path     string
	Services []Service
}

// LoadHarnessConfig reads and validates a data point's compose file.
func LoadHarnessConfig(path string) (*HarnessConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrCodeConfigNotFound, "compose file not found: %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, fmt.Sprintf("read compose file %s", path), err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, fmt.Sprintf("unmarshal compose file %s", path), err)
	}

	services, err := decodeServices(&doc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, fmt.Sprintf("compose file %s", path), err)
	}
	if len(services) == 0 {
		return nil, errors.Newf(errors.ErrCodeConfigInvalid, "compose file %s declares no services", path)
	}

	for _, svc := range services {
		if !svc.HasImage() {
			continue
		}
		if _, err := name.ParseReference(svc.Image); err != nil {
			return nil, errors.Wrap(errors.ErrCodeImageRefInvalid,
				fmt.Sprintf("service %q image %q", svc.Name, svc.Image), err)
		}
	}

	return &HarnessConfig{Path: path, Services: services}, nil
}

// decodeServices walks the YAML document by node so that the services map
// keeps its declaration order; decoding into a Go map would lose it.
func decodeServices(doc *yaml.Node) ([]Service, error) {
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("empty document")
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("top level is not a mapping")
	}

	var servicesNode *yaml.Node
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == "services" {
			servicesNode = root.Content[i+1]
			break
		}
	}
	if servicesNode == nil {
		return nil, fmt.Errorf("no services key")
	}
	if servicesNode.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("services is not a mapping")
	}

	var services []Service
	for i := 0; i+1 < len(servicesNode.Content); i += 2 {
		keyNode, valNode := servicesNode.Content[i], servicesNode.Content[i+1]

		var body struct {
			Image string `yaml:"image"`
		}
		if err := valNode.Decode(&body); err != nil {
			return nil, fmt.Errorf("service %q: %w", keyNode.Value, err)
		}

		services = append(services, Service{Name: keyNode.Value, Image: body.Image})
	}
	return services, nil
}
