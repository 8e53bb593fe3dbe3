package prefabs

import "fmt"

const ActionsFile = "actions.yaml"

// ActionPrototype is a reusable action definition. Event is raised on the
// performer when the action is used.
type ActionPrototype struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Event       string  `yaml:"event"`
	UseDelay    float64 `yaml:"use_delay"`
}

type actionsFileSpec struct {
	Actions []ActionPrototype `yaml:"actions"`
}

// LoadActionPrototypes reads the action catalogue keyed by id.
func LoadActionPrototypes() (map[string]ActionPrototype, error) {
	spec, err := LoadSpec[actionsFileSpec](ActionsFile)
	if err != nil {
		return nil, err
	}
	out := make(map[string]ActionPrototype, len(spec.Actions))
	for _, proto := range spec.Actions {
		if proto.ID == "" {
			return nil, fmt.Errorf("prefabs: %s: action without id", ActionsFile)
		}
		if proto.Event == "" {
			return nil, fmt.Errorf("prefabs: %s: action %q has no event", ActionsFile, proto.ID)
		}
		if _, dup := out[proto.ID]; dup {
			return nil, fmt.Errorf("prefabs: %s: duplicate action %q", ActionsFile, proto.ID)
		}
		out[proto.ID] = proto
	}
	return out, nil
}
