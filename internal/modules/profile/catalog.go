package profile

import (
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"farecalc/internal/modules/pricing"
)

type catalogFile struct {
	Profiles map[string]pricing.FareProfile `yaml:"profiles"`
}

// LoadCatalog returns the built-in profiles overlaid with the entries of a YAML file:
//
//	profiles:
//	  noturno: {base_fare: 7, min_fare: 15, cost_per_km: 2.5, cost_per_min: 0.7}
//
// An empty path yields the built-ins unchanged.
func LoadCatalog(path string) (map[string]pricing.FareProfile, error) {
	out := Defaults()
	if path == "" {
		return out, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	for name, p := range f.Profiles {
		name = strings.TrimSpace(name)
		if name == "" || name == NameCustom {
			return nil, fmt.Errorf("%s: %w %q", path, ErrReservedProfile, name)
		}
		for _, v := range []float64{p.BaseFare, p.MinFare, p.CostPerKm, p.CostPerMin} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%s: profile %q: %w", path, name, pricing.ErrInvalidSettings)
			}
		}
		out[name] = p
	}
	return out, nil
}
