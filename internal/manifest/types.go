package manifest

// Document is one data-source entry in a bundle's manifest directory. The
// layout mirrors what the collector writes for command-backed sources.
type Document struct {
	Name     string        `json:"name" yaml:"name"`
	ExecTime float64       `json:"exec_time" yaml:"exec_time"`
	Errors   []string      `json:"errors" yaml:"errors"`
	Results  CommandResult `json:"results" yaml:"results"`
	SerTime  float64       `json:"ser_time" yaml:"ser_time"`
}

type CommandResult struct {
	Type   string        `json:"type" yaml:"type"`
	Object CommandObject `json:"object" yaml:"object"`
}

// CommandObject describes one command execution and where its output lives
// relative to the bundle's data root.
type CommandObject struct {
	RC           *int    `json:"rc" yaml:"rc"`
	Cmd          string  `json:"cmd" yaml:"cmd"`
	Args         *string `json:"args" yaml:"args"`
	SaveAs       bool    `json:"save_as" yaml:"save_as"`
	RelativePath string  `json:"relative_path" yaml:"relative_path"`
}

// FileDescriptor advertises one raw file carried by a data source.
type FileDescriptor struct {
	Type   string     `json:"type"`
	Object FileObject `json:"object"`
}

type FileObject struct {
	SaveAs       bool   `json:"save_as"`
	RelativePath string `json:"relative_path"`
	RC           *int   `json:"rc"`
}

const (
	RawFileProvider = "insights.core.spec_factory.RawFileProvider"

	// TimeSeriesFile is the entry listing the pmlogger archive files.
	TimeSeriesFile = "insights.specs.Specs.pcp_raw_data.json"

	resultsKey = "results"
)
