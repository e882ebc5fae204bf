package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Env       string          `yaml:"env"`       // Env is the current environment: local, development, production.
	HTTP      HTTPConfig      `yaml:"http"`      // HTTP holds the API server configuration
	Storage   StorageConfig   `yaml:"storage"`   // Storage selects the employee and run store
	Postgres  PostgresConfig  `yaml:"postgres"`  // Postgres holds the database configuration
	Employees EmployeesConfig `yaml:"employees"` // Employees holds the directory behaviour
	Jira      JiraConfig      `yaml:"jira"`      // Jira holds the ticket tracker configuration
	Gemini    GeminiConfig    `yaml:"gemini"`    // Gemini holds the code generation configuration
	Git       GitConfig       `yaml:"git"`       // Git holds the commit and push configuration
	Pipeline  PipelineConfig  `yaml:"pipeline"`  // Pipeline holds the agent pipeline configuration
	Metrics   MetricsConfig   `yaml:"metrics"`   // Metrics holds where agent run metrics are exported
	Tracing   TracingConfig   `yaml:"tracing"`   // Tracing holds the OTLP trace exporter configuration
}

// HTTPConfig struct holds the listener settings of the employee API.
type HTTPConfig struct {
	Address         string        `yaml:"address"`          // Address is the listen address of the API, e.g. `:8080`.
	MetricsAddress  string        `yaml:"metrics_address"`  // MetricsAddress serves /metrics and /healthz.
	ReadTimeout     time.Duration `yaml:"read_timeout"`     // ReadTimeout bounds reading a request.
	WriteTimeout    time.Duration `yaml:"write_timeout"`    // WriteTimeout bounds writing a response.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // ShutdownTimeout bounds graceful shutdown.
}

type StorageConfig struct {
	Driver   string `yaml:"driver"`    // Driver is `memory` or `postgres`.
	RunsFile string `yaml:"runs_file"` // RunsFile keeps the agent run history when Driver is `memory`.
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string `yaml:"host"`     // Host is the database server address.
	Port     string `yaml:"port"`     // Port is the database server port.
	User     string `yaml:"user"`     // User is the database user.
	Password string `yaml:"password"` // Password is the database user's password.
	Dbname   string `yaml:"db_name"`  // Dbname is the name of the database.
}

type EmployeesConfig struct {
	DummyDepartment string `yaml:"dummy_department"` // DummyDepartment is served by GET /employees/dummy.
}

// JiraConfig struct holds the connection details of the ticket tracker.
type JiraConfig struct {
	URL               string `yaml:"url"`                 // URL is the Jira base url, `https://example.atlassian.net`.
	User              string `yaml:"user"`                // User is the account used for basic auth.
	Token             string `yaml:"token"`               // Token is the API token of User.
	Mock              bool   `yaml:"mock"`                // Mock serves stories without calling Jira.
	MockStoriesPath   string `yaml:"mock_stories_path"`   // MockStoriesPath is an optional YAML fixture of stories.
	DoneTransition    string `yaml:"done_transition"`     // DoneTransition is the transition applied after push.
	AcceptanceFieldID string `yaml:"acceptance_field_id"` // AcceptanceFieldID is the custom field with criteria.
}

type GeminiConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// GitConfig struct holds the commit author and push settings.
type GitConfig struct {
	RepoPath    string `yaml:"repo_path"`    // RepoPath is the working tree the pipeline writes into.
	Branch      string `yaml:"branch"`       // Branch is pushed to origin.
	Remote      string `yaml:"remote"`       // Remote is the name of the push remote.
	AuthorName  string `yaml:"author_name"`  // AuthorName signs pipeline commits.
	AuthorEmail string `yaml:"author_email"` // AuthorEmail signs pipeline commits.
	Username    string `yaml:"username"`     // Username for HTTPS push.
	Token       string `yaml:"token"`        // Token for HTTPS push; empty means no auth.
	Push        bool   `yaml:"push"`         // Push disables pushing when false.
}

// PipelineConfig struct holds the generated artifact layout and the stage policy.
type PipelineConfig struct {
	CodePath      string        `yaml:"code_path"`      // CodePath is relative to the repo path.
	TestPath      string        `yaml:"test_path"`      // TestPath is relative to the repo path.
	APIPath       string        `yaml:"api_path"`       // APIPath is the endpoint covered by the generated test.
	LintCommands  []string      `yaml:"lint_commands"`  // LintCommands run inside the repo path, `;`-separated in env.
	StrictLint    bool          `yaml:"strict_lint"`    // StrictLint fails the run on lint errors.
	RetryAttempts int           `yaml:"retry_attempts"` // RetryAttempts bounds calls to external services.
	RetryDelay    time.Duration `yaml:"retry_delay"`    // RetryDelay is waited between attempts.
	Timeout       time.Duration `yaml:"timeout"`        // Timeout bounds a whole run.
	Comment       string        `yaml:"comment"`        // Comment is posted to the ticket after push.
}

// MetricsConfig struct holds the export targets of the agent metrics; empty values disable a target.
type MetricsConfig struct {
	PushgatewayURL string `yaml:"pushgateway_url"` // PushgatewayURL receives the registry after every run.
	Job            string `yaml:"job"`             // Job is the Pushgateway job label.
	TextfilePath   string `yaml:"textfile_path"`   // TextfilePath is rewritten for the node exporter textfile collector.
}

type TracingConfig struct {
	Endpoint    string `yaml:"endpoint"`     // Endpoint is the OTLP gRPC collector, `localhost:4317`; empty disables tracing.
	Insecure    bool   `yaml:"insecure"`     // Insecure disables TLS towards Endpoint.
	ServiceName string `yaml:"service_name"` // ServiceName is reported as the service.name resource.
}

// MustLoad loads the configuration from the YAML file named by CONFIG_PATH and panics on failure.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		panic("config path is empty")
	}

	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		panic("config error: " + err.Error())
	}

	return cfg
}

// Load reads the YAML file at path, applies SCRUM_* environment overrides and defaults.
func Load(path string) (*Config, error) {
	vpr := viper.New()
	vpr.SetConfigFile(path)
	vpr.SetConfigType("yaml")
	vpr.SetEnvPrefix("SCRUM")
	vpr.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vpr.AutomaticEnv()

	setDefaults(vpr)

	if err := vpr.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{
		Env: vpr.GetString("env"),
		HTTP: HTTPConfig{
			Address:         vpr.GetString("http.address"),
			MetricsAddress:  vpr.GetString("http.metrics_address"),
			ReadTimeout:     vpr.GetDuration("http.read_timeout"),
			WriteTimeout:    vpr.GetDuration("http.write_timeout"),
			ShutdownTimeout: vpr.GetDuration("http.shutdown_timeout"),
		},
		Storage: StorageConfig{
			Driver:   strings.ToLower(vpr.GetString("storage.driver")),
			RunsFile: vpr.GetString("storage.runs_file"),
		},
		Postgres: PostgresConfig{
			Host:     vpr.GetString("postgres.host"),
			Port:     vpr.GetString("postgres.port"),
			User:     vpr.GetString("postgres.user"),
			Password: vpr.GetString("postgres.password"),
			Dbname:   vpr.GetString("postgres.db_name"),
		},
		Employees: EmployeesConfig{
			DummyDepartment: vpr.GetString("employees.dummy_department"),
		},
		Jira: JiraConfig{
			URL:               vpr.GetString("jira.url"),
			User:              vpr.GetString("jira.user"),
			Token:             vpr.GetString("jira.token"),
			Mock:              vpr.GetBool("jira.mock"),
			MockStoriesPath:   vpr.GetString("jira.mock_stories_path"),
			DoneTransition:    vpr.GetString("jira.done_transition"),
			AcceptanceFieldID: vpr.GetString("jira.acceptance_field_id"),
		},
		Gemini: GeminiConfig{
			APIKey:  vpr.GetString("gemini.api_key"),
			Model:   vpr.GetString("gemini.model"),
			BaseURL: vpr.GetString("gemini.base_url"),
		},
		Git: GitConfig{
			RepoPath:    vpr.GetString("git.repo_path"),
			Branch:      vpr.GetString("git.branch"),
			Remote:      vpr.GetString("git.remote"),
			AuthorName:  vpr.GetString("git.author_name"),
			AuthorEmail: vpr.GetString("git.author_email"),
			Username:    vpr.GetString("git.username"),
			Token:       vpr.GetString("git.token"),
			Push:        vpr.GetBool("git.push"),
		},
		Pipeline: PipelineConfig{
			CodePath:      vpr.GetString("pipeline.code_path"),
			TestPath:      vpr.GetString("pipeline.test_path"),
			APIPath:       vpr.GetString("pipeline.api_path"),
			LintCommands:  commandList(vpr.Get("pipeline.lint_commands")),
			StrictLint:    vpr.GetBool("pipeline.strict_lint"),
			RetryAttempts: vpr.GetInt("pipeline.retry_attempts"),
			RetryDelay:    vpr.GetDuration("pipeline.retry_delay"),
			Timeout:       vpr.GetDuration("pipeline.timeout"),
			Comment:       vpr.GetString("pipeline.comment"),
		},
		Metrics: MetricsConfig{
			PushgatewayURL: vpr.GetString("metrics.pushgateway_url"),
			Job:            vpr.GetString("metrics.job"),
			TextfilePath:   vpr.GetString("metrics.textfile_path"),
		},
		Tracing: TracingConfig{
			Endpoint:    vpr.GetString("tracing.endpoint"),
			Insecure:    vpr.GetBool("tracing.insecure"),
			ServiceName: vpr.GetString("tracing.service_name"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(vpr *viper.Viper) {
	vpr.SetDefault("env", "local")
	vpr.SetDefault("http.address", ":8080")
	vpr.SetDefault("http.metrics_address", ":9090")
	vpr.SetDefault("http.read_timeout", 5*time.Second)
	vpr.SetDefault("http.write_timeout", 10*time.Second)
	vpr.SetDefault("http.shutdown_timeout", 10*time.Second)
	vpr.SetDefault("storage.driver", StorageMemory)
	vpr.SetDefault("storage.runs_file", defaultRunsFile())
	vpr.SetDefault("postgres.port", "5432")
	vpr.SetDefault("employees.dummy_department", "Sales")
	vpr.SetDefault("jira.done_transition", "Done")
	vpr.SetDefault("gemini.model", "gemini-2.0-flash")
	vpr.SetDefault("git.repo_path", ".")
	vpr.SetDefault("git.branch", "main")
	vpr.SetDefault("git.remote", "origin")
	vpr.SetDefault("git.author_name", "scrum-agent")
	vpr.SetDefault("git.author_email", "scrum-agent@localhost")
	vpr.SetDefault("git.push", true)
	vpr.SetDefault("pipeline.code_path", "generated/employees/employees.go")
	vpr.SetDefault("pipeline.test_path", "generated/employees/employees_test.go")
	vpr.SetDefault("pipeline.api_path", "/employees")
	vpr.SetDefault("pipeline.lint_commands", []string{"gofmt -l -w .", "go vet ./..."})
	vpr.SetDefault("pipeline.retry_attempts", 3)
	vpr.SetDefault("pipeline.retry_delay", 5*time.Second)
	vpr.SetDefault("pipeline.timeout", 5*time.Minute)
	vpr.SetDefault("pipeline.comment", "Code pushed with tests. Closing story.")
	vpr.SetDefault("metrics.job", "scrum_agent")
	vpr.SetDefault("tracing.service_name", "scrum-agent")
}

// defaultRunsFile keeps the run history outside the repository the pipeline commits.
func defaultRunsFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}

	return filepath.Join(dir, "scrum-agent", "runs.yaml")
}

// commandList reads a list of commands. A plain string, as set through SCRUM_PIPELINE_LINT_COMMANDS,
// holds commands separated by `;`.
func commandList(value any) []string {
	var raw []string
	if str, ok := value.(string); ok {
		raw = strings.Split(str, ";")
	} else {
		raw = cast.ToStringSlice(value)
	}

	commands := make([]string, 0, len(raw))
	for _, command := range raw {
		if command = strings.TrimSpace(command); command != "" {
			commands = append(commands, command)
		}
	}

	return commands
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case StorageMemory, StoragePostgres:
	default:
		return fmt.Errorf("%w: unknown storage driver %q", ErrInvalidConfig, c.Storage.Driver)
	}

	if c.Storage.Driver == StorageMemory && c.Storage.RunsFile == "" {
		return fmt.Errorf("%w: storage.runs_file is required with the memory driver", ErrInvalidConfig)
	}

	if c.Pipeline.RetryAttempts < 1 {
		return fmt.Errorf("%w: pipeline.retry_attempts must be at least 1", ErrInvalidConfig)
	}

	return nil
}
