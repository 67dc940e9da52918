package generator

import (
	"encoding/json"
	"io"
	"time"

	"github.com/kstarfusion/delta/internal/channel"
	"github.com/kstarfusion/delta/internal/config"
	"github.com/kstarfusion/delta/internal/deltaerr"
	"github.com/kstarfusion/delta/internal/reporter"
	"github.com/kstarfusion/delta/internal/transport"
)

// Generator reads chunks from a Reader and writes them to a transport
// Producer, one BeginStep/Put/EndStep cycle per chunk, at a wall-clock
// pace derived from the chunk's real-time duration unless Paced is
// false.
type Generator struct {
	Reader       *Reader
	Producer     transport.Producer
	VariableName string
	Channels     int
	ChunkSize    int
	FSample      float64
	Paced        bool
	Reporter     reporter.Reporter
}

// Run defines the stream's variable and config attribute, then replays
// every chunk the Reader yields, pacing emission to
// chunk_size/f_sample wall-clock seconds per chunk unless Paced is
// false. It returns a TransportError if any transport call fails.
func (g *Generator) Run(cfg *config.Config) error {
	if g.Reporter == nil {
		g.Reporter = reporter.NullReporter{}
	}

	if err := g.Producer.Open(); err != nil {
		return deltaerr.NewTransportError("opening transport", err)
	}

	shape := []int{g.Channels, g.ChunkSize}
	if err := g.Producer.DefineVariable(g.VariableName, shape, config.DatatypeFloat); err != nil {
		return deltaerr.NewTransportError("DefineVariable failed", err)
	}

	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return deltaerr.NewConfigError("marshaling config attribute: " + err.Error())
	}
	if err := g.Producer.DefineAttribute("cfg", cfgJSON); err != nil {
		return deltaerr.NewTransportError("DefineAttribute failed", err)
	}

	pace := time.Duration(float64(g.ChunkSize) / g.FSample * float64(time.Second))

	for {
		data, err := g.Reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return deltaerr.NewTransportError("reading source chunk", err)
		}

		started := time.Now()
		if err := g.Producer.BeginStep(); err != nil {
			return deltaerr.NewTransportError("BeginStep failed", err)
		}
		if err := g.Producer.Put(g.VariableName, data); err != nil {
			return deltaerr.NewTransportError("Put failed", err)
		}
		if err := g.Producer.EndStep(); err != nil {
			return deltaerr.NewTransportError("EndStep failed", err)
		}
		g.Reporter.ChunkReceived(reporter.ChunkEvent{})

		if g.Paced {
			if remaining := pace - time.Since(started); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}

	if err := g.Producer.Close(); err != nil {
		return deltaerr.NewTransportError("closing transport", err)
	}
	return nil
}

// VariableNameFromConfig derives the single streamed variable's name
// from the configured channel range, matching the naming the Receiver
// expects on the consuming side.
func VariableNameFromConfig(cfg *config.Config) string {
	if len(cfg.Diagnostic.DataSource.ChannelRange) > 0 {
		return cfg.Diagnostic.DataSource.ChannelRange[0]
	}
	return "data"
}

// ChannelCount sums the channel count of every configured range string,
// falling back to the full device grid if none parse.
func ChannelCount(ranges []string) int {
	return channel.TotalChannels(ranges)
}
