package defaults

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Context bundles every default data provider. It is built once before any
// calculation starts and is read-only afterwards, so it is shared freely
// between calculation workers.
type Context struct {
	version  CountryVersion
	diets    *DietProvider
	manure   *ManureCompositionProvider
	bedding  *BeddingCompositionProvider
	residues *CropResidueProvider
}

// NewContext builds the providers from a source table set. The source is
// copied, so later changes to tables are not observed.
func NewContext(version CountryVersion, tables Tables) (*Context, error) {
	if _, ok := tables.Versions[version]; !ok {
		return nil, &MissingDefaultError{Table: "country version", Key: string(version)}
	}

	source := tables.Clone()

	manure, err := NewManureCompositionProvider(source)
	if err != nil {
		return nil, err
	}
	bedding, err := NewBeddingCompositionProvider(source)
	if err != nil {
		return nil, err
	}
	residues, err := NewCropResidueProvider(source)
	if err != nil {
		return nil, err
	}

	return &Context{
		version:  version,
		diets:    NewDietProvider(source.Diets),
		manure:   manure,
		bedding:  bedding,
		residues: residues,
	}, nil
}

// NewBuiltinContext builds a context from the built-in tables
func NewBuiltinContext(version CountryVersion) (*Context, error) {
	return NewContext(version, BuiltinTables())
}

// Version returns the country version new farms are initialized with
func (c *Context) Version() CountryVersion {
	return c.version
}

// Diets returns the diet provider
func (c *Context) Diets() *DietProvider {
	return c.diets
}

// Manure returns the manure composition provider
func (c *Context) Manure() *ManureCompositionProvider {
	return c.manure
}

// Bedding returns the bedding composition provider
func (c *Context) Bedding() *BeddingCompositionProvider {
	return c.bedding
}

// CropResidues returns the crop residue provider
func (c *Context) CropResidues() *CropResidueProvider {
	return c.residues
}

// LoadTables reads a YAML table file. Versions present in the file replace
// the built-in tables of that version; a non-empty diet list replaces the
// built-in diet catalogue.
func LoadTables(path string) (Tables, error) {
	tables := BuiltinTables()
	if path == "" {
		return tables, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("failed to read default tables: %w", err)
	}

	var override Tables
	if err := yaml.Unmarshal(data, &override); err != nil {
		return Tables{}, fmt.Errorf("failed to parse default tables %s: %w", path, err)
	}

	if len(override.Diets) > 0 {
		tables.Diets = override.Diets
	}
	for version, vt := range override.Versions {
		tables.Versions[version] = vt
	}
	return tables, nil
}
