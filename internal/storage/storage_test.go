package storage

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kstarfusion/delta/internal/analysis"
	"github.com/kstarfusion/delta/internal/config"
)

func TestNewDispatchesByBackend(t *testing.T) {
	cases := []struct {
		name    string
		cfg     config.Storage
		wantErr bool
	}{
		{"empty backend is null", config.Storage{}, false},
		{"explicit null", config.Storage{Backend: config.StorageNull}, false},
		{"numpy requires datadir", config.Storage{Backend: config.StorageNumpy}, true},
		{"numpy with datadir", config.Storage{Backend: config.StorageNumpy, Datadir: t.TempDir()}, false},
		{"mongo requires datastore", config.Storage{Backend: config.StorageMongo}, true},
		{"mongo with datastore", config.Storage{Backend: config.StorageMongo, Datastore: "localhost:6379"}, false},
		{"unknown backend", config.Storage{Backend: "dynamodb"}, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			adapter, err := New(c.cfg)
			if c.wantErr {
				if err == nil {
					t.Fatalf("New(%+v) = nil error, want error", c.cfg)
				}
				return
			}
			if err != nil {
				t.Fatalf("New(%+v) = %v, want no error", c.cfg, err)
			}
			if adapter == nil {
				t.Fatalf("New(%+v) = nil adapter", c.cfg)
			}
		})
	}
}

func TestNullAdapterIsNoOp(t *testing.T) {
	a := NullAdapter{}
	if _, err := a.StoreMetadata(&config.Config{}, "run1", nil); err != nil {
		t.Fatalf("StoreMetadata: %v", err)
	}
	if err := a.StoreResult(analysis.Scalar(1.0), ResultInfo{}); err != nil {
		t.Fatalf("StoreResult: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestNumpyAdapterWritesMetadataAndResultArchive(t *testing.T) {
	dir := t.TempDir()
	a, err := NewNumpyAdapter(dir)
	if err != nil {
		t.Fatalf("NewNumpyAdapter: %v", err)
	}

	seq := analysis.DispatchSequence{}
	metaPath, err := a.StoreMetadata(&config.Config{}, "run42", seq)
	if err != nil {
		t.Fatalf("StoreMetadata: %v", err)
	}
	if _, err := os.Stat(metaPath); err != nil {
		t.Fatalf("metadata file not written: %v", err)
	}

	result := analysis.Result{Shape: analysis.ShapeVectorF, Dims: []int{3}, Data: []float64{1.5, 2.5, -3.0}}
	if err := a.StoreResult(result, ResultInfo{TaskName: "coherence", Tidx: 0, RunID: "run42", Timestamp: time.Now()}); err != nil {
		t.Fatalf("StoreResult: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(dir, "run42"))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	var npzCount int
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".npz" {
			npzCount++
		}
	}
	if npzCount != 1 {
		t.Fatalf("got %d .npz files, want 1", npzCount)
	}
}

func TestNumpyAdapterRejectsResultBeforeMetadata(t *testing.T) {
	a, err := NewNumpyAdapter(t.TempDir())
	if err != nil {
		t.Fatalf("NewNumpyAdapter: %v", err)
	}
	err = a.StoreResult(analysis.Scalar(1.0), ResultInfo{RunID: "x"})
	if err == nil {
		t.Fatal("StoreResult before StoreMetadata: want error, got nil")
	}
}

func TestNewUUIDProducesDistinctIdentifiers(t *testing.T) {
	a, err := newUUID()
	if err != nil {
		t.Fatalf("newUUID: %v", err)
	}
	b, err := newUUID()
	if err != nil {
		t.Fatalf("newUUID: %v", err)
	}
	if a == b {
		t.Fatalf("newUUID produced the same id twice: %s", a)
	}
	if len(a) != 36 {
		t.Fatalf("newUUID length = %d, want 36", len(a))
	}
}

func TestWriteNPYRoundTripsFloat64Payload(t *testing.T) {
	result := analysis.Result{Dims: []int{2}, Data: []float64{1.25, -2.5}}

	var buf bufferWriter
	if err := writeNPY(&buf, result); err != nil {
		t.Fatalf("writeNPY: %v", err)
	}

	data := buf.b
	if string(data[0:6]) != "\x93NUMPY" {
		t.Fatalf("missing NPY magic, got %q", data[0:6])
	}
	headerLen := binary.LittleEndian.Uint16(data[8:10])
	payload := data[10+int(headerLen):]
	if len(payload) != 2*8 {
		t.Fatalf("payload length = %d, want 16", len(payload))
	}
	v0 := math.Float64frombits(binary.LittleEndian.Uint64(payload[0:8]))
	if v0 != 1.25 {
		t.Fatalf("first value = %v, want 1.25", v0)
	}
}

type bufferWriter struct{ b []byte }

func (w *bufferWriter) Write(p []byte) (int, error) {
	w.b = append(w.b, p...)
	return len(p), nil
}
