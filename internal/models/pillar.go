package models

import "fmt"

// Pillar is one of the three fixed life-balance categories. The set is
// closed: values outside the three constants are rejected when decoding.
type Pillar int

const (
	PillarHardWork Pillar = iota
	PillarCalmness
	PillarFamily
)

var pillarNames = [...]string{"hard_work", "calmness", "family"}

var pillarColors = [...]string{"#D9634E", "#4C9A8F", "#E8B84B"}

// Pillars returns all pillars in display order.
func Pillars() []Pillar {
	return []Pillar{PillarHardWork, PillarCalmness, PillarFamily}
}

func (p Pillar) Valid() bool {
	return p >= PillarHardWork && p <= PillarFamily
}

func (p Pillar) String() string {
	if !p.Valid() {
		return fmt.Sprintf("pillar(%d)", int(p))
	}
	return pillarNames[p]
}

// Color returns the fixed display color for the pillar. The engine never
// interprets it; it exists so every client renders the same palette.
func (p Pillar) Color() string {
	if !p.Valid() {
		return ""
	}
	return pillarColors[p]
}

func ParsePillar(s string) (Pillar, error) {
	for i, name := range pillarNames {
		if s == name {
			return Pillar(i), nil
		}
	}
	return 0, fmt.Errorf("unknown pillar: %q", s)
}

func (p Pillar) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("cannot encode invalid pillar %d", int(p))
	}
	return []byte(pillarNames[p]), nil
}

func (p *Pillar) UnmarshalText(data []byte) error {
	parsed, err := ParsePillar(string(data))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
