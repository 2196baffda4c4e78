// Package docker discovers monitored images from running containers.
package docker

import (
	"context"
	"log/slog"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"

	"github.com/user/registry-watch/pkg/errors"
	"github.com/user/registry-watch/pkg/types"
)

// Client wraps the Docker daemon client for image discovery.
type Client struct {
	client *client.Client
	logger *slog.Logger
}

// NewClient connects to the local Docker daemon using the environment
// configuration.
func NewClient(logger *slog.Logger) (*Client, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, errors.Wrap("docker.NewClient", err)
	}
	return &Client{client: cli, logger: logger}, nil
}

// Close releases the daemon connection.
func (d *Client) Close() error {
	return d.client.Close()
}

// Ping verifies the daemon is reachable.
func (d *Client) Ping(ctx context.Context) error {
	if _, err := d.client.Ping(ctx); err != nil {
		return errors.Wrap("docker.Ping", err)
	}
	return nil
}

// ListRunningImages returns a monitored-image entry for every distinct image
// the running containers use. Digest-pinned references are skipped: a pinned
// digest never moves, so there is nothing to watch.
func (d *Client) ListRunningImages(ctx context.Context) ([]types.MonitoredImage, error) {
	containers, err := d.client.ContainerList(ctx, container.ListOptions{})
	if err != nil {
		return nil, errors.Wrap("docker.ListRunningImages", err)
	}

	seen := make(map[string]struct{})
	var images []types.MonitoredImage
	for _, cont := range containers {
		inspect, err := d.client.ContainerInspect(ctx, cont.ID)
		if err != nil {
			d.logger.Warn("inspecting container failed", "container", shortID(cont.ID), "error", err)
			continue
		}

		img, ok := ParseImageString(inspect.Config.Image)
		if !ok {
			d.logger.Debug("skipping unparsable or digest-pinned image", "image", inspect.Config.Image)
			continue
		}
		img.Name = containerName(cont)

		if _, dup := seen[img.Key()]; dup {
			continue
		}
		seen[img.Key()] = struct{}{}
		images = append(images, img)
	}

	d.logger.Info("discovered images from running containers", "containers", len(containers), "images", len(images))
	return images, nil
}

// ParseImageString splits a container image string into a monitored-image
// entry. Returns false for digest-pinned or empty references.
func ParseImageString(image string) (types.MonitoredImage, bool) {
	image = strings.TrimSpace(image)
	if image == "" || strings.Contains(image, "@") {
		return types.MonitoredImage{}, false
	}

	path := image
	tag := ""
	// A colon after the last slash separates the tag; earlier colons
	// belong to a registry port.
	lastSlash := strings.LastIndex(path, "/")
	if colon := strings.LastIndex(path, ":"); colon > lastSlash {
		tag = path[colon+1:]
		path = path[:colon]
	}
	if path == "" {
		return types.MonitoredImage{}, false
	}

	return types.MonitoredImage{ImagePath: path, Tag: tag}, true
}

func containerName(cont container.Summary) string {
	for _, name := range cont.Names {
		if trimmed := strings.TrimPrefix(name, "/"); trimmed != "" {
			return trimmed
		}
	}
	return shortID(cont.ID)
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
