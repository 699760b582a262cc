package agents

import "fmt"

// Kind identifies one of the four recovery agents.
type Kind int

const (
	Therapist Kind = iota
	Closure
	RoutinePlanner
	BrutalHonesty
)

var kindNames = [...]string{
	Therapist:      "therapist",
	Closure:        "closure",
	RoutinePlanner: "routine-planner",
	BrutalHonesty:  "brutal-honesty",
}

// Kinds returns every kind in the order agents run.
func Kinds() []Kind {
	return []Kind{Therapist, Closure, RoutinePlanner, BrutalHonesty}
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown agent kind %q", s)
}
