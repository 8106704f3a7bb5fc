// Package launch turns a canonical payment link into an ordered probe plan
// over installed payment apps and runs the handoff.
package launch

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/boopathydreams/capnpay-upi/internal/upi"
)

// App is one registered payment handler: a display name and the deep-link
// prefix that replaces the canonical scheme when probing it.
type App struct {
	Name   string `yaml:"name"`
	Prefix string `yaml:"prefix"`
}

// Registry holds handler apps in fixed priority order. Order is the whole
// contract; probing walks it top to bottom.
type Registry struct {
	Apps []App `yaml:"apps"`
}

// DefaultRegistry returns the built-in probe order.
func DefaultRegistry() Registry {
	return Registry{Apps: []App{
		{Name: "gpay", Prefix: "tez://upi/pay"},
		{Name: "phonepe", Prefix: "phonepe://pay"},
		{Name: "paytm", Prefix: "paytmmp://pay"},
	}}
}

// LoadRegistry reads a registry from a YAML file; an empty path yields the
// built-in order.
func LoadRegistry(path string) (Registry, error) {
	if path == "" {
		return DefaultRegistry(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Registry{}, fmt.Errorf("read launch registry: %w", err)
	}
	var reg Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return Registry{}, fmt.Errorf("parse launch registry: %w", err)
	}
	if len(reg.Apps) == 0 {
		return Registry{}, fmt.Errorf("launch registry %s lists no apps", path)
	}
	for i, app := range reg.Apps {
		if app.Name == "" || app.Prefix == "" {
			return Registry{}, fmt.Errorf("launch registry %s: app %d needs name and prefix", path, i)
		}
	}
	return reg, nil
}

// Candidate pairs an app name with the URI to hand it.
type Candidate struct {
	App string
	URI string
}

// Plan renders the probe sequence for one canonical link: every registered
// app's rewrite in registry order, then the canonical link itself as the
// final fallback for whatever generic handler the OS provides. Plan is pure;
// it never checks what is installed.
func (r Registry) Plan(link string) []Candidate {
	out := make([]Candidate, 0, len(r.Apps)+1)
	if strings.HasPrefix(link, upi.Scheme) {
		for _, app := range r.Apps {
			out = append(out, Candidate{App: app.Name, URI: app.Prefix + link[len(upi.Scheme):]})
		}
	}
	return append(out, Candidate{App: "upi", URI: link})
}
