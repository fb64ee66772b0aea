package scoring

import (
	"fmt"
	"sort"
	"strings"
)

// MoatFactors records the qualitative competitive advantages an analyst
// attributes to a business.
type MoatFactors struct {
	Brand            bool `json:"brand"`
	NetworkEffects   bool `json:"network_effects"`
	SwitchingCosts   bool `json:"switching_costs"`
	CostAdvantage    bool `json:"cost_advantage"`
	IntangibleAssets bool `json:"intangible_assets"` // patents, licences, regulation
}

// moatNames maps the accepted input names to a setter.
var moatNames = map[string]func(*MoatFactors){
	"brand":             func(m *MoatFactors) { m.Brand = true },
	"network":           func(m *MoatFactors) { m.NetworkEffects = true },
	"network_effects":   func(m *MoatFactors) { m.NetworkEffects = true },
	"switching":         func(m *MoatFactors) { m.SwitchingCosts = true },
	"switching_costs":   func(m *MoatFactors) { m.SwitchingCosts = true },
	"cost":              func(m *MoatFactors) { m.CostAdvantage = true },
	"cost_advantage":    func(m *MoatFactors) { m.CostAdvantage = true },
	"intangible":        func(m *MoatFactors) { m.IntangibleAssets = true },
	"intangible_assets": func(m *MoatFactors) { m.IntangibleAssets = true },
}

// MoatMax is the highest possible moat score.
const MoatMax = 5

// Score counts the factors that are present.
func (m MoatFactors) Score() int {
	n := 0
	for _, f := range []bool{m.Brand, m.NetworkEffects, m.SwitchingCosts, m.CostAdvantage, m.IntangibleAssets} {
		if f {
			n++
		}
	}
	return n
}

// Names returns the canonical names of the factors that are present.
func (m MoatFactors) Names() []string {
	var out []string
	if m.Brand {
		out = append(out, "brand")
	}
	if m.NetworkEffects {
		out = append(out, "network_effects")
	}
	if m.SwitchingCosts {
		out = append(out, "switching_costs")
	}
	if m.CostAdvantage {
		out = append(out, "cost_advantage")
	}
	if m.IntangibleAssets {
		out = append(out, "intangible_assets")
	}
	return out
}

// ParseMoatFactors parses a comma-separated list such as "brand,network".
// Names are case-insensitive; an empty string yields no factors.
func ParseMoatFactors(s string) (MoatFactors, error) {
	var m MoatFactors
	for _, part := range strings.Split(s, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		set, ok := moatNames[name]
		if !ok {
			return MoatFactors{}, fmt.Errorf("unknown moat factor %q (valid: %s)", name, strings.Join(validMoatNames(), ", "))
		}
		set(&m)
	}
	return m, nil
}

func validMoatNames() []string {
	names := make([]string, 0, len(moatNames))
	for k := range moatNames {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
