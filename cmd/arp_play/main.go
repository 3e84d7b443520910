package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	arpgen "github.com/cbegin/arpgen-go"
)

func main() {
	var (
		sampleRate  = flag.Int("sample-rate", 48000, "output sample rate")
		patternText = flag.String("pattern", "1232343", "step pattern")
		chordName   = flag.String("chord", "CM7", "chord name, e.g. Am, G7, F#M7")
		scaleName   = flag.String("scale", "", "derive the chord from a scale instead of -chord")
		scaleRoot   = flag.String("scale-root", "C", "scale root note name")
		scaleDegree = flag.Int("scale-degree", 0, "scale degree the chord is built on")
		stacked     = flag.Bool("stacked", true, "stack the scale chord in thirds")
		tempo       = flag.Float64("tempo", 120, "tempo in BPM")
		division    = flag.String("div", "1/16", "step subdivision, e.g. 1/8, 1/16t")
		octave      = flag.Int("octave", 4, "base octave (0-7)")
		velocity    = flag.Int("velocity", 96, "base velocity (16-127)")
		mode        = flag.String("mode", "folded", "degree resolution: folded|asplayed|scalewalk")
		absent      = flag.String("absent", "next", "absent degree policy: off|next|previous")
		presetPath  = flag.String("preset", "", "path to a YAML preset; flags above are ignored")
		volume      = flag.Float64("volume", 1.0, "master volume scalar")
		seconds     = flag.Float64("seconds", 8, "playback duration (0 = until interrupted)")
	)
	flag.Parse()

	arp := arpgen.New()
	if *presetPath != "" {
		preset, err := arpgen.LoadPresetFile(*presetPath)
		if err != nil {
			log.Fatal(err)
		}
		if err := preset.Apply(arp); err != nil {
			log.Fatal(err)
		}
	} else if err := configureFromFlags(arp, flagConfig{
		pattern: *patternText, chord: *chordName,
		scale: *scaleName, scaleRoot: *scaleRoot, scaleDegree: *scaleDegree, stacked: *stacked,
		tempo: *tempo, division: *division, octave: *octave, velocity: *velocity,
		mode: *mode, absent: *absent,
	}); err != nil {
		log.Fatal(err)
	}

	pl, err := arpgen.NewPlayer(*sampleRate)
	if err != nil {
		log.Fatal(err)
	}
	pl.SetMasterVolume(*volume)
	if err := pl.Play(arp); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("playing %q over %s at %.1f BPM\n", arp.Pattern(), chordLabel(*presetPath, *scaleName, *scaleRoot, *chordName), arp.Tempo())

	if *seconds <= 0 {
		select {} // play until interrupted
	}
	time.Sleep(time.Duration(*seconds * float64(time.Second)))
	if err := pl.Stop(); err != nil {
		log.Fatal(err)
	}
}

type flagConfig struct {
	pattern, chord   string
	scale, scaleRoot string
	scaleDegree      int
	stacked          bool
	tempo            float64
	division         string
	octave, velocity int
	mode, absent     string
}

func configureFromFlags(arp *arpgen.Arpeggiator, cfg flagConfig) error {
	div, err := arpgen.ParseSubdivision(cfg.division)
	if err != nil {
		return err
	}
	mode, err := arpgen.ParseResolutionMode(cfg.mode)
	if err != nil {
		return err
	}
	policy, err := arpgen.ParseAbsentDegreePolicy(cfg.absent)
	if err != nil {
		return err
	}
	arp.SetTempo(cfg.tempo)
	arp.SetSubdivision(div)
	arp.SetOctave(cfg.octave)
	arp.SetVelocity(cfg.velocity)
	arp.SetResolutionMode(mode)
	arp.SetAbsentDegreePolicy(policy)
	arp.SetPattern(cfg.pattern)
	if cfg.scale != "" {
		return arp.SetScaleChord(cfg.scaleRoot, cfg.scale, cfg.scaleDegree, cfg.stacked)
	}
	arp.SetChordName(cfg.chord)
	return nil
}

func chordLabel(presetPath, scale, root, chord string) string {
	switch {
	case presetPath != "":
		return presetPath
	case scale != "":
		return root + " " + scale
	default:
		return chord
	}
}
