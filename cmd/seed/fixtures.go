package main

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures/*.yaml
var fixtureFiles embed.FS

// seedFixtures is the sample campaign shipped with the seeder: a few
// characters and locations plus notes that cross-reference each other
// with wikilinks and mentions, so the link graph has something to show
// immediately after seeding.
type seedFixtures struct {
	Campaign struct {
		ID      string `yaml:"id"`
		Name    string `yaml:"name"`
		OwnerID string `yaml:"owner_id"`
	} `yaml:"campaign"`
	Characters []seedEntity `yaml:"characters"`
	Locations  []seedEntity `yaml:"locations"`
	Notes      []seedNote   `yaml:"notes"`
}

type seedEntity struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

type seedNote struct {
	Title      string   `yaml:"title"`
	Folder     string   `yaml:"folder"`
	Tags       []string `yaml:"tags"`
	Visibility string   `yaml:"visibility"`
	Body       string   `yaml:"body"`
}

func loadFixtures() (*seedFixtures, error) {
	data, err := fixtureFiles.ReadFile("fixtures/campaign.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures: %w", err)
	}

	var fixtures seedFixtures
	if err := yaml.Unmarshal(data, &fixtures); err != nil {
		return nil, fmt.Errorf("failed to unmarshal fixtures: %w", err)
	}
	return &fixtures, nil
}
