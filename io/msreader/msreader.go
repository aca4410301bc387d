/*
Package msreader is the default spectrum.Parser implementation for the
MS2 text format: one "S" header line per spectrum (first scan, last
scan, precursor m/z), zero or more "Z" charge-state lines (charge,
M+H mass), and a run of "mz intensity" peak lines up to the next "S" or
end of file. "H" header lines and "D"/"I" info lines are skipped.
Grounded on original_source/src/model/Spectrum.cpp's field layout
(first_scan_/last_scan_/precursor m/z/Z-states/peaks).
*/
package msreader

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/crux-ms/xlink/spectrum"
)

// Source is a spectrum.Parser backed by an in-memory parsed MS2 file.
type Source struct {
	spectra []spectrum.Spectrum
	pos     int
}

// New parses every spectrum in r and returns a ready-to-iterate Source.
func New(r io.Reader) (*Source, error) {
	spectra, err := Parse(r)
	if err != nil {
		return nil, err
	}
	return &Source{spectra: spectra}, nil
}

// Next implements spectrum.Parser.
func (s *Source) Next() (spectrum.Spectrum, bool, error) {
	if s.pos >= len(s.spectra) {
		return spectrum.Spectrum{}, false, nil
	}
	sp := s.spectra[s.pos]
	s.pos++
	return sp, true, nil
}

// Count returns the total number of parsed spectra.
func (s *Source) Count() int { return len(s.spectra) }

// Parse reads every spectrum record from r's MS2-formatted content.
func Parse(r io.Reader) ([]spectrum.Spectrum, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var spectra []spectrum.Spectrum
	var cur *spectrum.Spectrum

	flush := func() {
		if cur != nil {
			spectra = append(spectra, *cur)
		}
		cur = nil
	}

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "H":
			continue
		case "S":
			flush()
			sp, err := parseS(fields)
			if err != nil {
				return nil, fmt.Errorf("msreader: line %d: %w", lineNo, err)
			}
			cur = &sp
		case "Z":
			if cur == nil {
				return nil, fmt.Errorf("msreader: line %d: Z line before any S line", lineNo)
			}
			z, err := parseZ(fields)
			if err != nil {
				return nil, fmt.Errorf("msreader: line %d: %w", lineNo, err)
			}
			cur.ZStates = append(cur.ZStates, z)
		case "D", "I":
			continue
		default:
			if cur == nil {
				return nil, fmt.Errorf("msreader: line %d: peak line before any S line", lineNo)
			}
			p, err := parsePeak(fields)
			if err != nil {
				return nil, fmt.Errorf("msreader: line %d: %w", lineNo, err)
			}
			cur.Peaks = append(cur.Peaks, p)
		}
	}
	flush()
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("msreader: scan failed: %w", err)
	}
	return spectra, nil
}

// parseS parses an "S first_scan last_scan precursor_mz" header line.
func parseS(fields []string) (spectrum.Spectrum, error) {
	if len(fields) < 4 {
		return spectrum.Spectrum{}, fmt.Errorf("malformed S line: %q", strings.Join(fields, " "))
	}
	first, err := strconv.Atoi(fields[1])
	if err != nil {
		return spectrum.Spectrum{}, fmt.Errorf("invalid first scan: %w", err)
	}
	last, err := strconv.Atoi(fields[2])
	if err != nil {
		return spectrum.Spectrum{}, fmt.Errorf("invalid last scan: %w", err)
	}
	precursor, err := strconv.ParseFloat(fields[3], 64)
	if err != nil {
		return spectrum.Spectrum{}, fmt.Errorf("invalid precursor m/z: %w", err)
	}
	return spectrum.Spectrum{FirstScan: first, LastScan: last, PrecursorMZ: precursor}, nil
}

// parseZ parses a "Z charge MH_mass" line.
func parseZ(fields []string) (spectrum.ZState, error) {
	if len(fields) < 3 {
		return spectrum.ZState{}, fmt.Errorf("malformed Z line: %q", strings.Join(fields, " "))
	}
	charge, err := strconv.Atoi(fields[1])
	if err != nil {
		return spectrum.ZState{}, fmt.Errorf("invalid charge: %w", err)
	}
	mh, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return spectrum.ZState{}, fmt.Errorf("invalid M+H mass: %w", err)
	}
	return spectrum.NewZStateFromMH(mh, charge), nil
}

// parsePeak parses an "mz intensity" data line.
func parsePeak(fields []string) (spectrum.Peak, error) {
	if len(fields) < 2 {
		return spectrum.Peak{}, fmt.Errorf("malformed peak line: %q", strings.Join(fields, " "))
	}
	mz, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return spectrum.Peak{}, fmt.Errorf("invalid m/z: %w", err)
	}
	intensity, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return spectrum.Peak{}, fmt.Errorf("invalid intensity: %w", err)
	}
	return spectrum.Peak{MZ: mz, Intensity: intensity}, nil
}
