package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kstarfusion/delta/internal/deltaerr"
)

func validConfig() *Config {
	return &Config{
		Diagnostic: Diagnostic{
			Name: DiagnosticKSTARECEI,
			Parameters: DiagnosticParameters{
				TriggerTime: []float64{0, 1, 5},
				SampleRate:  500,
				TNorm:       []float64{0, 0.01},
			},
			DataSource: DataSource{
				SourceFile: "shot.h5",
				ChunkSize:  10000,
				NumChunks:  10,
				Datatype:   DatatypeFloat,
			},
		},
		Transport: Transport{Engine: TransportBP4, ChannelRange: []string{"L0101-L2408"}},
		FFTParams: FFTParams{NFFT: 256, Window: "hann", Overlap: 128, Detrend: "none"},
		TaskList: []TaskConfig{
			{Analysis: "cross_phase", Kwargs: TaskKwargs{RefChannels: []string{"L0101-L0101"}, XChannels: []string{"L0102-L0102"}}},
		},
		Storage: Storage{Backend: StorageNull},
	}
}

func TestValidateAcceptsWellFormedConfig(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected valid config to pass, got %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"unknown diagnostic name", func(c *Config) { c.Diagnostic.Name = "bogus" }},
		{"unknown transport engine", func(c *Config) { c.Transport.Engine = "bogus" }},
		{"zero nfft", func(c *Config) { c.FFTParams.NFFT = 0 }},
		{"unknown window", func(c *Config) { c.FFTParams.Window = "blackman" }},
		{"unknown detrend", func(c *Config) { c.FFTParams.Detrend = "quadratic" }},
		{"empty task list", func(c *Config) { c.TaskList = nil }},
		{"unknown storage backend", func(c *Config) { c.Storage.Backend = "sqlite" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected Validate to reject the modified config")
			}
			if !deltaerr.IsKind(err, deltaerr.KindConfig) {
				t.Errorf("expected KindConfig error, got %v", err)
			}
		})
	}
}

func TestLoadParsesYAMLAndAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "delta.yaml")
	yaml := `
diagnostic:
  name: kstarecei
  parameters:
    TriggerTime: [0, 1, 5]
    SampleRate: 500
    t_norm: [0, 0.01]
  datasource:
    source_file: shot.h5
    chunk_size: 10000
    num_chunks: 10
transport:
  engine: bp4
  channel_range: ["L0101-L2408"]
fft_params:
  nfft: 256
  overlap: 128
task_list:
  - analysis: cross_phase
    kwargs:
      ref_channels: ["L0101-L0101"]
      x_channels: ["L0102-L0102"]
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.FFTParams.Window != "hann" {
		t.Errorf("expected default window hann, got %q", cfg.FFTParams.Window)
	}
	if cfg.FFTParams.Detrend != "none" {
		t.Errorf("expected default detrend none, got %q", cfg.FFTParams.Detrend)
	}
	if cfg.Storage.Backend != StorageNull {
		t.Errorf("expected default storage backend null, got %q", cfg.Storage.Backend)
	}
	if cfg.Diagnostic.DataSource.Datatype != DatatypeFloat {
		t.Errorf("expected default datatype float, got %q", cfg.Diagnostic.DataSource.Datatype)
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/delta.yaml")
	if !deltaerr.IsKind(err, deltaerr.KindConfig) {
		t.Fatalf("expected KindConfig error for missing file, got %v", err)
	}
}

func TestHopDerivation(t *testing.T) {
	f := FFTParams{NFFT: 256, Overlap: 128}
	if got, want := f.Hop(), 128; got != want {
		t.Errorf("Hop() = %d, want %d", got, want)
	}
}

func TestFSampleHzConvertsFromKHz(t *testing.T) {
	p := DiagnosticParameters{SampleRate: 500}
	if got, want := p.FSampleHz(), 500e3; got != want {
		t.Errorf("FSampleHz() = %v, want %v", got, want)
	}
}
