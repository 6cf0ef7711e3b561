package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// otoOutput plays an interleaved float32 stream on the default device.
type otoOutput struct {
	ctx     *oto.Context
	player  *oto.Player
	started bool
	mutex   sync.Mutex
}

func newOtoOutput(sampleRate, channels int) (*otoOutput, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatFloat32LE,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("audio: open device: %w", err)
	}
	<-ready

	return &otoOutput{ctx: ctx}, nil
}

func (o *otoOutput) start(src io.Reader) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if o.started {
		return
	}
	o.player = o.ctx.NewPlayer(src)
	o.player.Play()
	o.started = true
}

func (o *otoOutput) close() error {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if o.player == nil {
		return nil
	}
	err := o.player.Close()
	o.player = nil
	o.started = false
	return err
}
