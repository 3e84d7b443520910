package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	arpgen "github.com/cbegin/arpgen-go"
)

func main() {
	var (
		sampleRate  = flag.Int("sample-rate", 48000, "render sample rate")
		patternText = flag.String("pattern", "1232343", "step pattern")
		chordName   = flag.String("chord", "CM7", "chord name, e.g. Am, G7, F#M7")
		tempo       = flag.Float64("tempo", 120, "tempo in BPM")
		division    = flag.String("div", "1/16", "step subdivision, e.g. 1/8, 1/16t")
		octave      = flag.Int("octave", 4, "base octave (0-7)")
		presetPath  = flag.String("preset", "", "path to a YAML preset; flags above are ignored")
		seconds     = flag.Float64("seconds", 8, "render duration")
		outPath     = flag.String("out", "arp.mid", "output path (.mid or .wav)")
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
	} else {
		div, err := arpgen.ParseSubdivision(*division)
		if err != nil {
			log.Fatal(err)
		}
		arp.SetTempo(*tempo)
		arp.SetSubdivision(div)
		arp.SetOctave(*octave)
		arp.SetPattern(*patternText)
		arp.SetChordName(*chordName)
	}

	var data []byte
	switch {
	case strings.HasSuffix(*outPath, ".mid"):
		var err error
		data, err = arpgen.RenderSMF(arp, *sampleRate, *seconds)
		if err != nil {
			log.Fatal(err)
		}
	case strings.HasSuffix(*outPath, ".wav"):
		samples := arpgen.RenderSamples(arp, *sampleRate, *seconds)
		data = arpgen.EncodeWAVFloat32LE(samples, *sampleRate, 2)
	default:
		log.Fatalf("unsupported output extension for %q (expected .mid or .wav)", *outPath)
	}
	if err := os.WriteFile(*outPath, data, 0o644); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("wrote %s (%d bytes)\n", *outPath, len(data))
}
