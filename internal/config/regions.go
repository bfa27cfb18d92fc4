package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// DefaultRegions returns the built-in region to bookmaker table.
func DefaultRegions() map[string][]string {
	return map[string][]string{
		"br": {"betano", "pixbet", "betclic", "winamax", "sportingbet", "betfair", "superbet", "estrelabet", "kto"},
		"uk": {"bet365", "william_hill", "betfair", "paddy_power", "sky_bet", "ladbrokes", "coral", "betway", "unibet"},
		"fr": {"betclic", "winamax", "unibet", "parions_sport", "pmu", "zebet"},
		"es": {"bet365", "codere", "william_hill", "betfair", "sportium", "bwin"},
		"it": {"snai", "sisal", "eurobet", "bet365", "lottomatica", "goldbet"},
		"de": {"tipico", "bwin", "interwetten", "bet365", "betway"},
		"mx": {"caliente", "codere", "bet365", "betway", "strendus"},
		"ar": {"bplay", "codere", "betsson", "bet365"},
		"co": {"wplay", "rushbet", "betplay", "codere", "betsson"},
	}
}

type regionsFile struct {
	Regions map[string][]string `toml:"regions"`
}

// LoadRegionsFile reads a TOML document of the form
//
//	[regions]
//	br = ["betano", "pixbet"]
//
// Region codes and bookmaker keys are lowercased.
func LoadRegionsFile(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read regions file: %w", err)
	}
	return ParseRegions(data)
}

func ParseRegions(data []byte) (map[string][]string, error) {
	var doc regionsFile
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse regions file: %w", err)
	}
	if len(doc.Regions) == 0 {
		return nil, fmt.Errorf("regions file defines no regions")
	}

	regions := make(map[string][]string, len(doc.Regions))
	for code, bookmakers := range doc.Regions {
		code = strings.ToLower(strings.TrimSpace(code))
		if code == "" {
			continue
		}
		list := make([]string, 0, len(bookmakers))
		for _, bm := range bookmakers {
			if bm = strings.ToLower(strings.TrimSpace(bm)); bm != "" {
				list = append(list, bm)
			}
		}
		regions[code] = list
	}
	return regions, nil
}
