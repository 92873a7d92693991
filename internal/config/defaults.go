package config

import (
	"os"
)

// DefaultFileName is looked up in the working directory when no --config is given.
const DefaultFileName = "inkwell.yaml"

// Default returns the configuration used when no file is present. The values
// mirror the behaviour of the hosted manuscript evaluator: .pdf/.docx/.doc up
// to 10 MB, a 2-5 second simulated delay and scores between 6 and 9.
func Default() Config {
	return Config{
		Version: "1.0",
		Log: LogConfig{
			Level:         "info",
			HumanReadable: true,
		},
		Settings: Settings{
			StageTimeout:       0,
			MaxFileSize:        10 * 1000 * 1000,
			AcceptedExtensions: []string{".pdf", ".docx", ".doc"},
		},
		Evaluator: EvaluatorConfig{
			Provider: "simulated",
			Simulated: SimulatedConfig{
				MinDelayMS: 2000,
				MaxDelayMS: 5000,
				MinScore:   6,
				MaxScore:   9,
			},
		},
	}
}

// Resolve picks the configuration file to load. An explicit path always
// wins; otherwise DefaultFileName is used when it exists. The boolean is
// false when defaults should apply.
func Resolve(explicit string) (string, bool) {
	if explicit != "" {
		return explicit, true
	}
	if info, err := os.Stat(DefaultFileName); err == nil && !info.IsDir() {
		return DefaultFileName, true
	}
	return "", false
}
