package config

// Config is the application configuration read from tts2sv.yaml or
// tts2sv.toml. Persisted form defaults live in Settings, not here.
type Config struct {
	Interpreter InterpreterConfig `yaml:"interpreter" toml:"interpreter"`
	Run         RunConfig         `yaml:"run" toml:"run"`
	UI          UIConfig          `yaml:"ui" toml:"ui"`
}

type InterpreterConfig struct {
	// Command is the default Python executable. Empty means platform default.
	Command string `yaml:"command" toml:"command"`
	// WorkingDirectory is used when the form leaves it empty.
	WorkingDirectory string `yaml:"working_directory" toml:"working_directory"`
	// MinimumPython is the lowest interpreter version diagnostics accept.
	MinimumPython string `yaml:"minimum_python" toml:"minimum_python"`
}

type RunConfig struct {
	LineBuffered   bool `yaml:"line_buffered" toml:"line_buffered"`
	EventHistory   int  `yaml:"event_history" toml:"event_history"`
	ReportArtifact bool `yaml:"report_artifacts" toml:"report_artifacts"`
}

type UIConfig struct {
	Title  string `yaml:"title" toml:"title"`
	Width  int    `yaml:"width" toml:"width"`
	Height int    `yaml:"height" toml:"height"`
}

// fileConfig mirrors Config with pointer booleans so an explicit false in a
// file can be told apart from an absent key.
type fileConfig struct {
	Interpreter InterpreterConfig `yaml:"interpreter" toml:"interpreter"`
	Run         fileRunConfig     `yaml:"run" toml:"run"`
	UI          UIConfig          `yaml:"ui" toml:"ui"`
}

type fileRunConfig struct {
	LineBuffered   *bool `yaml:"line_buffered" toml:"line_buffered"`
	EventHistory   int   `yaml:"event_history" toml:"event_history"`
	ReportArtifact *bool `yaml:"report_artifacts" toml:"report_artifacts"`
}
