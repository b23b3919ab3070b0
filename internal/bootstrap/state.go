package bootstrap

// State is a step of the bootstrap sequence. States only move forward.
type State int

const (
	StateUninitialized State = iota
	StateConfigLoaded
	StateThemeConfigLoaded
	StateThemeSetupComplete
	StateEntryLoaded
	StateMounted
)

var stateNames = [...]string{
	StateUninitialized:      "uninitialized",
	StateConfigLoaded:       "config_loaded",
	StateThemeConfigLoaded:  "theme_config_loaded",
	StateThemeSetupComplete: "theme_setup_complete",
	StateEntryLoaded:        "entry_loaded",
	StateMounted:            "mounted",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}
