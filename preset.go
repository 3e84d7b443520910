package arpgen

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Preset is a serializable arpeggiator configuration. Zero-valued fields
// keep the arpeggiator's defaults, so presets only need to list what they
// change.
type Preset struct {
	Pattern     string  `yaml:"pattern,omitempty"`
	Chord       string  `yaml:"chord,omitempty"`
	Scale       string  `yaml:"scale,omitempty"`
	ScaleRoot   string  `yaml:"scaleRoot,omitempty"`
	ScaleDegree int     `yaml:"scaleDegree,omitempty"`
	Stacked     bool    `yaml:"stacked,omitempty"`
	Tempo       float64 `yaml:"tempo,omitempty"`
	Subdivision string  `yaml:"subdivision,omitempty"`
	Octave      *int    `yaml:"octave,omitempty"`
	Velocity    int     `yaml:"velocity,omitempty"`
	Mode        string  `yaml:"mode,omitempty"`
	AbsentNote  string  `yaml:"absentNote,omitempty"`
	Channel     *int    `yaml:"channel,omitempty"`
}

// LoadPreset reads a preset from YAML.
func LoadPreset(r io.Reader) (Preset, error) {
	var p Preset
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return Preset{}, fmt.Errorf("decoding preset: %w", err)
	}
	return p, nil
}

// LoadPresetFile reads a preset from a YAML file.
func LoadPresetFile(path string) (Preset, error) {
	f, err := os.Open(path)
	if err != nil {
		return Preset{}, err
	}
	defer f.Close()
	return LoadPreset(f)
}

// Save writes the preset as YAML.
func (p Preset) Save(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return err
	}
	return enc.Close()
}

// Apply configures the arpeggiator from the preset. A chord name and a
// scale are mutually exclusive; the scale wins if both are set.
func (p Preset) Apply(a *Arpeggiator) error {
	if p.Tempo > 0 {
		a.SetTempo(p.Tempo)
	}
	if p.Subdivision != "" {
		div, err := ParseSubdivision(p.Subdivision)
		if err != nil {
			return err
		}
		a.SetSubdivision(div)
	}
	if p.Octave != nil {
		a.SetOctave(*p.Octave)
	}
	if p.Velocity > 0 {
		a.SetVelocity(p.Velocity)
	}
	if p.Mode != "" {
		mode, err := ParseResolutionMode(p.Mode)
		if err != nil {
			return err
		}
		a.SetResolutionMode(mode)
	}
	if p.AbsentNote != "" {
		policy, err := ParseAbsentDegreePolicy(p.AbsentNote)
		if err != nil {
			return err
		}
		a.SetAbsentDegreePolicy(policy)
	}
	if p.Channel != nil {
		if *p.Channel < 0 || *p.Channel > 15 {
			return fmt.Errorf("channel %d out of range 0..15", *p.Channel)
		}
		a.SetChannel(uint8(*p.Channel))
	}
	if p.Pattern != "" {
		a.SetPattern(p.Pattern)
	}
	switch {
	case p.Scale != "":
		root := p.ScaleRoot
		if root == "" {
			root = "C"
		}
		if err := a.SetScaleChord(root, p.Scale, p.ScaleDegree, p.Stacked); err != nil {
			return err
		}
	case p.Chord != "":
		a.SetChordName(p.Chord)
	}
	return nil
}
