package data

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Domains maps user-facing country codes and dataset names to the ENTSO-E
// EIC bidding-zone codes and document types. It is immutable after creation.
type Domains struct {
	zones    map[string]string
	docTypes map[string]string
}

// DefaultZones returns a fresh copy of the bidding zones known out of the box.
func DefaultZones() map[string]string {
	return map[string]string{
		"BE": "10YBE----------2",
		"FR": "10YFR-RTE------C",
	}
}

// DefaultDocumentTypes returns a fresh copy of the datasets known out of the box.
func DefaultDocumentTypes() map[string]string {
	return map[string]string{
		"dayaheadprices": "A44",
		"imbalance":      "A95",
	}
}

// NewDomains copies zones and docTypes. Nil maps fall back to the defaults.
func NewDomains(zones, docTypes map[string]string) *Domains {
	if zones == nil {
		zones = DefaultZones()
	}
	if docTypes == nil {
		docTypes = DefaultDocumentTypes()
	}
	d := &Domains{
		zones:    make(map[string]string, len(zones)),
		docTypes: make(map[string]string, len(docTypes)),
	}
	for k, v := range zones {
		d.zones[k] = v
	}
	for k, v := range docTypes {
		d.docTypes[k] = v
	}
	return d
}

// Resolve returns the EIC code and document type for a country/dataset pair.
func (d *Domains) Resolve(country, dataset string) (zone, docType string, err error) {
	zone, ok := d.zones[country]
	if !ok {
		return "", "", fmt.Errorf("unknown country %q", country)
	}
	docType, ok = d.docTypes[dataset]
	if !ok {
		return "", "", fmt.Errorf("unknown dataset %q", dataset)
	}
	return zone, docType, nil
}

// Countries returns the configured country codes, sorted.
func (d *Domains) Countries() []string { return sortedKeys(d.zones) }

// Datasets returns the configured dataset names, sorted.
func (d *Domains) Datasets() []string { return sortedKeys(d.docTypes) }

func sortedKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// DomainList is the JSON form of a lookup table.
type DomainList struct {
	Zones         map[string]string `json:"zones"`
	DocumentTypes map[string]string `json:"document_types"`
}

// List exports the lookup for serving or saving.
func (d *Domains) List() DomainList {
	return DomainList{Zones: copyMap(d.zones), DocumentTypes: copyMap(d.docTypes)}
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// LoadDomains reads a DomainList from a JSON file.
func LoadDomains(filePath string) (*Domains, error) {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read domains file: %w", err)
	}
	var list DomainList
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("failed to parse domains file: %w", err)
	}
	return NewDomains(list.Zones, list.DocumentTypes), nil
}

// With returns a new lookup holding d's entries overlaid with zones and docTypes.
func (d *Domains) With(zones, docTypes map[string]string) *Domains {
	out := NewDomains(d.zones, d.docTypes)
	for k, v := range zones {
		out.zones[k] = v
	}
	for k, v := range docTypes {
		out.docTypes[k] = v
	}
	return out
}

// SaveDomains writes the lookup to a JSON file.
func SaveDomains(d *Domains, filePath string) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	raw, err := json.MarshalIndent(d.List(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal domains: %w", err)
	}
	if err := os.WriteFile(filePath, raw, 0644); err != nil {
		return fmt.Errorf("failed to write domains file: %w", err)
	}
	return nil
}

// DefaultDomainsPath returns DOMAINS_FILE or ./data/domains.json.
func DefaultDomainsPath() string {
	if path := os.Getenv("DOMAINS_FILE"); path != "" {
		return path
	}
	return "./data/domains.json"
}
