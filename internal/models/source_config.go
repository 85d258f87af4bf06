package models

// SourceConfig controls how input files are located and scanned
type SourceConfig struct {
	// BaseDir, when set, confines file_path requests to this directory
	BaseDir           string   `json:"base_dir,omitzero" yaml:"base_dir"`
	MaxLineBytes      int      `json:"max_line_bytes,omitzero" yaml:"max_line_bytes"`
	AllowedExtensions []string `json:"allowed_extensions,omitzero" yaml:"allowed_extensions"`
}
