package defaults

import (
	"fmt"
	"sort"
)

// DietProvider serves the diet catalogue
type DietProvider struct {
	diets []DietFormulation
}

// NewDietProvider creates a diet provider from a source catalogue
func NewDietProvider(diets []DietFormulation) *DietProvider {
	p := &DietProvider{diets: make([]DietFormulation, len(diets))}
	for i, d := range diets {
		p.diets[i] = d.Clone()
	}
	return p
}

// Diets returns a copy of every diet in catalogue order
func (p *DietProvider) Diets() []DietFormulation {
	out := make([]DietFormulation, len(p.diets))
	for i, d := range p.diets {
		out[i] = d.Clone()
	}
	return out
}

// Diet looks up a diet by name
func (p *DietProvider) Diet(name string) (DietFormulation, error) {
	for _, d := range p.diets {
		if d.Name == name {
			return d.Clone(), nil
		}
	}
	return DietFormulation{}, &MissingDefaultError{Table: "diet", Key: name}
}

// ManureCompositionProvider serves default manure composition per version
type ManureCompositionProvider struct {
	data map[CountryVersion]map[ManureTypeKey]ManureCompositionRecord
}

// NewManureCompositionProvider indexes the manure composition of every version
func NewManureCompositionProvider(tables Tables) (*ManureCompositionProvider, error) {
	p := &ManureCompositionProvider{data: make(map[CountryVersion]map[ManureTypeKey]ManureCompositionRecord)}
	for version, vt := range tables.Versions {
		index := make(map[ManureTypeKey]ManureCompositionRecord, len(vt.ManureComposition))
		for _, rec := range vt.ManureComposition {
			if _, dup := index[rec.Key()]; dup {
				return nil, fmt.Errorf("duplicate manure composition entry %s for version %s", rec.Key(), version)
			}
			index[rec.Key()] = rec
		}
		p.data[version] = index
	}
	return p, nil
}

// ManureDefaults returns a copy of the manure composition table for a version
func (p *ManureCompositionProvider) ManureDefaults(version CountryVersion) (map[ManureTypeKey]ManureCompositionRecord, error) {
	index, ok := p.data[version]
	if !ok {
		return nil, &MissingDefaultError{Table: "manure composition", Version: version, Key: string(version)}
	}
	out := make(map[ManureTypeKey]ManureCompositionRecord, len(index))
	for k, v := range index {
		out[k] = v
	}
	return out, nil
}

// ManureComposition looks up a single manure composition record
func (p *ManureCompositionProvider) ManureComposition(version CountryVersion, key ManureTypeKey) (ManureCompositionRecord, error) {
	rec, ok := p.data[version][key]
	if !ok {
		return ManureCompositionRecord{}, &MissingDefaultError{Table: "manure composition", Version: version, Key: key.String()}
	}
	return rec, nil
}

// Records returns the table for a version as a slice sorted by key
func (p *ManureCompositionProvider) Records(version CountryVersion) ([]ManureCompositionRecord, error) {
	index, err := p.ManureDefaults(version)
	if err != nil {
		return nil, err
	}
	out := make([]ManureCompositionRecord, 0, len(index))
	for _, rec := range index {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key().String() < out[j].Key().String()
	})
	return out, nil
}

// BeddingCompositionProvider serves default bedding material composition per version
type BeddingCompositionProvider struct {
	data map[CountryVersion]map[BeddingTypeKey]BeddingCompositionRecord
}

// NewBeddingCompositionProvider indexes the bedding composition of every version
func NewBeddingCompositionProvider(tables Tables) (*BeddingCompositionProvider, error) {
	p := &BeddingCompositionProvider{data: make(map[CountryVersion]map[BeddingTypeKey]BeddingCompositionRecord)}
	for version, vt := range tables.Versions {
		index := make(map[BeddingTypeKey]BeddingCompositionRecord, len(vt.BeddingComposition))
		for _, rec := range vt.BeddingComposition {
			if _, dup := index[rec.Key()]; dup {
				return nil, fmt.Errorf("duplicate bedding composition entry %s for version %s", rec.Key(), version)
			}
			index[rec.Key()] = rec
		}
		p.data[version] = index
	}
	return p, nil
}

// BeddingDefaults returns a copy of the bedding composition table for a version
func (p *BeddingCompositionProvider) BeddingDefaults(version CountryVersion) (map[BeddingTypeKey]BeddingCompositionRecord, error) {
	index, ok := p.data[version]
	if !ok {
		return nil, &MissingDefaultError{Table: "bedding composition", Version: version, Key: string(version)}
	}
	out := make(map[BeddingTypeKey]BeddingCompositionRecord, len(index))
	for k, v := range index {
		out[k] = v
	}
	return out, nil
}

// Records returns the table for a version as a slice sorted by key
func (p *BeddingCompositionProvider) Records(version CountryVersion) ([]BeddingCompositionRecord, error) {
	index, err := p.BeddingDefaults(version)
	if err != nil {
		return nil, err
	}
	out := make([]BeddingCompositionRecord, 0, len(index))
	for _, rec := range index {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key().String() < out[j].Key().String()
	})
	return out, nil
}

// CropResidueProvider serves crop residue defaults per version
type CropResidueProvider struct {
	data map[CountryVersion]map[CropType]CropResidueRecord
}

// NewCropResidueProvider indexes crop residue defaults of every version
func NewCropResidueProvider(tables Tables) (*CropResidueProvider, error) {
	p := &CropResidueProvider{data: make(map[CountryVersion]map[CropType]CropResidueRecord)}
	for version, vt := range tables.Versions {
		index := make(map[CropType]CropResidueRecord, len(vt.CropResidues))
		for _, rec := range vt.CropResidues {
			if _, dup := index[rec.Crop]; dup {
				return nil, fmt.Errorf("duplicate crop residue entry %s for version %s", rec.Crop, version)
			}
			index[rec.Crop] = rec
		}
		p.data[version] = index
	}
	return p, nil
}

// CropResidueDefaults returns a copy of the crop residue table for a version
func (p *CropResidueProvider) CropResidueDefaults(version CountryVersion) (map[CropType]CropResidueRecord, error) {
	index, ok := p.data[version]
	if !ok {
		return nil, &MissingDefaultError{Table: "crop residue", Version: version, Key: string(version)}
	}
	out := make(map[CropType]CropResidueRecord, len(index))
	for k, v := range index {
		out[k] = v
	}
	return out, nil
}

// CropResidue looks up the residue defaults of a single crop
func (p *CropResidueProvider) CropResidue(version CountryVersion, crop CropType) (CropResidueRecord, error) {
	rec, ok := p.data[version][crop]
	if !ok {
		return CropResidueRecord{}, &MissingDefaultError{Table: "crop residue", Version: version, Key: string(crop)}
	}
	return rec, nil
}
