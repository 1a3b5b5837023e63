package midi

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// PortSource listens to a MIDI input port.
type PortSource struct {
	In drivers.In
}

func (p PortSource) Name() string { return p.In.String() }

func (p PortSource) Listen(ctx context.Context, out chan<- Event) error {
	if !p.In.IsOpen() {
		if err := p.In.Open(); err != nil {
			return fmt.Errorf("open %s: %w", p.In, err)
		}
	}
	defer p.In.Close()

	log := logrus.WithField("source", p.Name())
	stop, err := gomidi.ListenTo(p.In, func(msg gomidi.Message, timestampms int32) {
		ev := Decode(msg)
		if ev.Kind == Other {
			return
		}
		log.Debugf("received %s", ev)
		send(ctx, out, ev)
	})
	if err != nil {
		return fmt.Errorf("listen %s: %w", p.In, err)
	}
	log.Info("listening")
	<-ctx.Done()
	stop()
	log.Info("stopped")
	return nil
}

// FindPort returns the first input whose name contains name, ignoring case.
func FindPort(drv drivers.Driver, name string) (drivers.In, error) {
	ins, err := drv.Ins()
	if err != nil {
		return nil, fmt.Errorf("list inputs: %w", err)
	}
	for _, in := range ins {
		if strings.Contains(strings.ToLower(in.String()), strings.ToLower(name)) {
			return in, nil
		}
	}
	return nil, fmt.Errorf("MIDI input %q not found", name)
}
