package config

import (
	"fmt"
	"os"

	"gopkg.in/go-playground/validator.v9"
	"gopkg.in/yaml.v2"
)

// Monitor holds the monitor configuration loaded from a YAML file
type Monitor struct {
	// TargetDir is the directory which holds one sub-directory per project
	TargetDir string `yaml:"target_dir" validate:"required"`

	// Username is the account submissions are collected for. Shown on the
	// status pages and used as the ledger file prefix.
	Username string `yaml:"username" validate:"required"`

	// Local indicates the target directory is on the local filesystem. If
	// false the SSH fields below are required.
	Local bool `yaml:"local"`

	// Hostname is the SSH server which holds the target directory
	Hostname string `yaml:"hostname"`

	// PrivateKeyFile is the path to the SSH private key used to authenticate
	PrivateKeyFile string `yaml:"private_key_file"`

	// PrivateKeyPassphrase decrypts PrivateKeyFile, empty if the key is
	// not encrypted
	PrivateKeyPassphrase string `yaml:"private_key_passphrase"`

	// LedgerDir is the directory ledger files are stored in
	LedgerDir string `yaml:"ledger_dir" validate:"required"`

	// LogDir is the directory grading action stdout / stderr logs are
	// written to. Created if it does not exist.
	LogDir string `yaml:"log_dir" validate:"required"`

	// WebsitePath is the directory the HTML status pages are written to
	WebsitePath string `yaml:"website_path" validate:"required"`

	// WebsiteHeader is the path to an HTML fragment prepended to every
	// status page
	WebsiteHeader string `yaml:"website_header" validate:"required"`

	// WebsiteFooter is the path to an HTML fragment appended to every
	// status page
	WebsiteFooter string `yaml:"website_footer" validate:"required"`

	// Projects are the projects to monitor
	Projects []Project `yaml:"projects" validate:"required,min=1,dive"`
}

// Project configures one grading pipeline. Immutable once loaded.
type Project struct {
	// Name is the project name, also the name of its sub-directory under
	// the target directory
	Name string `yaml:"name" validate:"required"`

	// Action is the grading executable run for each admitted submission.
	// It is invoked as: action <project> <filename>.
	Action string `yaml:"action" validate:"required"`

	// SizeLimitMB is the maximum admitted submission size in megabytes
	SizeLimitMB float64 `yaml:"size_limit" validate:"gt=0"`

	// TimeLimitSecs is the grading action wall-clock budget in seconds
	TimeLimitSecs float64 `yaml:"time_limit" validate:"gt=0"`
}

// SizeLimitBytes returns the project size limit in bytes
func (p Project) SizeLimitBytes() int64 {
	return int64(p.SizeLimitMB * 1e6)
}

// LoadMonitor reads and validates a monitor configuration file. Duplicate
// project names are a hard error, not a warning.
func LoadMonitor(path string) (*Monitor, error) {
	confBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %s: %s",
			path, err.Error())
	}

	var conf Monitor
	if err := yaml.UnmarshalStrict(confBytes, &conf); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %s: %s",
			path, err.Error())
	}

	validate := validator.New()
	if err := validate.Struct(conf); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %s",
			path, err.Error())
	}

	if !conf.Local && (conf.Hostname == "" || conf.PrivateKeyFile == "") {
		return nil, fmt.Errorf("invalid configuration in %s: hostname and "+
			"private_key_file are required when local is false", path)
	}

	seen := map[string]bool{}
	for _, project := range conf.Projects {
		if seen[project.Name] {
			return nil, fmt.Errorf("duplicate project name in %s: %s",
				path, project.Name)
		}
		seen[project.Name] = true
	}

	return &conf, nil
}

// ProjectByName returns the configuration for the named project, nil if the
// project is not configured
func (m *Monitor) ProjectByName(name string) *Project {
	for i := range m.Projects {
		if m.Projects[i].Name == name {
			return &m.Projects[i]
		}
	}

	return nil
}
