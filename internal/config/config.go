// Package config provides the frozen-at-start configuration for Delta,
// loaded with viper from a YAML or JSON file.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/kstarfusion/delta/internal/deltaerr"
)

const (
	DiagnosticKSTARECEI = "kstarecei"
	DiagnosticNSTXGPI   = "nstxgpi"

	TransportBP4     = "bp4"
	TransportDataman = "dataman"
	TransportSST     = "sst"

	StorageNumpy = "numpy"
	StorageMongo = "mongo"
	StorageNull  = "null"

	DatatypeInt   = "int"
	DatatypeFloat = "float"
)

// DiagnosticParameters mirrors diagnostic.parameters.
type DiagnosticParameters struct {
	TriggerTime []float64 `mapstructure:"TriggerTime"`
	SampleRate  float64   `mapstructure:"SampleRate"` // kHz
	TNorm       []float64 `mapstructure:"t_norm"`
}

// DataSource mirrors diagnostic.datasource.
type DataSource struct {
	SourceFile   string   `mapstructure:"source_file"`
	ChunkSize    int      `mapstructure:"chunk_size"`
	NumChunks    int      `mapstructure:"num_chunks"`
	ChannelRange []string `mapstructure:"channel_range"`
	Datatype     string   `mapstructure:"datatype"`
}

// Diagnostic mirrors the top-level diagnostic key.
type Diagnostic struct {
	Name       string               `mapstructure:"name"`
	ShotNr     int                  `mapstructure:"shotnr"`
	Parameters DiagnosticParameters `mapstructure:"parameters"`
	DataSource DataSource           `mapstructure:"datasource"`
}

// Transport mirrors the top-level transport key.
type Transport struct {
	Engine       string                 `mapstructure:"engine"`
	ChannelRange []string               `mapstructure:"channel_range"`
	Params       map[string]interface{} `mapstructure:"params"`
}

// FFTParams mirrors the top-level fft_params key.
type FFTParams struct {
	NFFT           int     `mapstructure:"nfft"`
	Window         string  `mapstructure:"window"`
	Overlap        int     `mapstructure:"overlap"`
	Detrend        string  `mapstructure:"detrend"`
	FSample        float64 `mapstructure:"fsample"`
	NormalizeScale bool    `mapstructure:"normalize_scale"`
}

// TaskKwargs mirrors one task_list entry's kwargs.
type TaskKwargs struct {
	RefChannels []string `mapstructure:"ref_channels"`
	XChannels   []string `mapstructure:"x_channels"`
	PerBin      bool     `mapstructure:"per_bin"`
}

// TaskConfig mirrors one task_list entry.
type TaskConfig struct {
	Analysis    string     `mapstructure:"analysis"`
	Description string     `mapstructure:"description"`
	Kwargs      TaskKwargs `mapstructure:"kwargs"`
}

// Storage mirrors the top-level storage key.
type Storage struct {
	Backend   string `mapstructure:"backend"`
	Datastore string `mapstructure:"datastore"`
	Datadir   string `mapstructure:"datadir"`
	RunID     string `mapstructure:"run_id"`
}

// Config is the full frozen-at-start configuration document.
type Config struct {
	Diagnostic Diagnostic   `mapstructure:"diagnostic"`
	Transport  Transport    `mapstructure:"transport"`
	FFTParams  FFTParams    `mapstructure:"fft_params"`
	TaskList   []TaskConfig `mapstructure:"task_list"`
	Storage    Storage      `mapstructure:"storage"`
}

// Load reads and parses the configuration file at path, applying defaults
// for optional keys before unmarshalling.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetDefault("fft_params.window", "hann")
	v.SetDefault("fft_params.detrend", "none")
	v.SetDefault("fft_params.normalize_scale", true)
	v.SetDefault("storage.backend", StorageNull)
	v.SetDefault("diagnostic.datasource.datatype", DatatypeFloat)

	if err := v.ReadInConfig(); err != nil {
		return nil, deltaerr.NewConfigError(fmt.Sprintf("reading config file %q: %v", path, err))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, deltaerr.NewConfigError(fmt.Sprintf("parsing config file %q: %v", path, err))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for key presence and range constraints,
// returning the first violation as a fatal config error.
func (c *Config) Validate() error {
	switch c.Diagnostic.Name {
	case DiagnosticKSTARECEI, DiagnosticNSTXGPI:
	default:
		return deltaerr.NewConfigError(fmt.Sprintf("diagnostic.name must be %q or %q, got %q", DiagnosticKSTARECEI, DiagnosticNSTXGPI, c.Diagnostic.Name))
	}

	switch c.Transport.Engine {
	case TransportBP4, TransportDataman, TransportSST:
	default:
		return deltaerr.NewConfigError(fmt.Sprintf("transport.engine must be one of bp4, dataman, sst, got %q", c.Transport.Engine))
	}

	if c.FFTParams.NFFT <= 0 {
		return deltaerr.NewConfigError("fft_params.nfft must be positive")
	}
	switch c.FFTParams.Window {
	case "hann", "hamming", "rect":
	default:
		return deltaerr.NewConfigError(fmt.Sprintf("fft_params.window must be hann, hamming, or rect, got %q", c.FFTParams.Window))
	}
	switch c.FFTParams.Detrend {
	case "none", "constant", "linear":
	default:
		return deltaerr.NewConfigError(fmt.Sprintf("fft_params.detrend must be none, constant, or linear, got %q", c.FFTParams.Detrend))
	}

	if len(c.TaskList) == 0 {
		return deltaerr.NewConfigError("task_list must contain at least one task")
	}

	switch c.Storage.Backend {
	case StorageNumpy, StorageMongo, StorageNull:
	default:
		return deltaerr.NewConfigError(fmt.Sprintf("storage.backend must be numpy, mongo, or null, got %q", c.Storage.Backend))
	}

	return nil
}

// FSampleHz returns the configured sampling rate in Hz. SampleRate is
// stored in kHz in the config file.
func (d DiagnosticParameters) FSampleHz() float64 {
	return d.SampleRate * 1e3
}

// Hop derives fft_params.hop from nfft and overlap, mirroring the STFT
// convention that overlap is expressed in samples of overlap between
// consecutive blocks.
func (f FFTParams) Hop() int {
	hop := f.NFFT - f.Overlap
	if hop <= 0 {
		hop = f.NFFT
	}
	return hop
}
