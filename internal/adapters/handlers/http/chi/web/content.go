package web

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var defaultContent []byte

// Section is one informational block of the site
type Section struct {
	ID       string `yaml:"id"`
	Title    string `yaml:"title"`
	Body     string `yaml:"body"`
	Image    string `yaml:"image"`
	ImageAlt string `yaml:"imageAlt"`
}

// GalleryText holds the copy of the gallery and upload section
type GalleryText struct {
	Title               string `yaml:"title"`
	UploadTitle         string `yaml:"uploadTitle"`
	NamePlaceholder     string `yaml:"namePlaceholder"`
	PasswordPlaceholder string `yaml:"passwordPlaceholder"`
	Submit              string `yaml:"submit"`
	Submitting          string `yaml:"submitting"`
	Connecting          string `yaml:"connecting"`
	Empty               string `yaml:"empty"`
	GateTitle           string `yaml:"gateTitle"`
	GateSubmit          string `yaml:"gateSubmit"`
}

// Content is the static copy of the site
type Content struct {
	Couple     string      `yaml:"couple"`
	Date       string      `yaml:"date"`
	Background string      `yaml:"background"`
	Sections   []Section   `yaml:"sections"`
	Gallery    GalleryText `yaml:"gallery"`
	Footer     string      `yaml:"footer"`
}

// ParseContent decodes site copy from YAML
func ParseContent(data []byte) (Content, error) {
	var c Content
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Content{}, fmt.Errorf("invalid site content: %w", err)
	}
	if c.Couple == "" {
		return Content{}, fmt.Errorf("invalid site content: couple is required")
	}
	return c, nil
}

// DefaultContent returns the embedded site copy
func DefaultContent() Content {
	c, err := ParseContent(defaultContent)
	if err != nil {
		panic(err)
	}
	return c
}
