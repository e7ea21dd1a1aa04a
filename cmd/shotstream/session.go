package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/banshee-data/jumpshot/internal/engine"
	"github.com/banshee-data/jumpshot/internal/imu"
	"github.com/banshee-data/jumpshot/internal/timeutil"
)

const inboxSize = 4096

type publisher interface {
	Publish(topic string, payload []byte) error
}

type pahoPublisher struct {
	client mqtt.Client
}

func (p *pahoPublisher) Publish(topic string, payload []byte) error {
	token := p.client.Publish(topic, 1, false, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish to %s timed out", topic)
	}
	return token.Error()
}

type stats struct {
	Payloads        atomic.Int64
	Dropped         atomic.Int64
	BadPayloads     atomic.Int64
	Samples         atomic.Int64
	Shots           atomic.Int64
	PublishFailures atomic.Int64 // shots not delivered to the broker
	Transitions     atomic.Int64
}

func (s *stats) String() string {
	return fmt.Sprintf("payloads=%d dropped=%d bad=%d samples=%d shots=%d unpublished=%d transitions=%d",
		s.Payloads.Load(), s.Dropped.Load(), s.BadPayloads.Load(),
		s.Samples.Load(), s.Shots.Load(), s.PublishFailures.Load(), s.Transitions.Load())
}

// session owns one engine. Only the loop goroutine touches it.
type session struct {
	engine *engine.Engine
	pub    publisher
	topics topics
	stats  *stats
}

func newSession(eng *engine.Engine, pub publisher, t topics) *session {
	return &session{engine: eng, pub: pub, topics: t, stats: &stats{}}
}

// enqueue hands a payload to the loop, dropping it when the inbox is full
// so the MQTT client is never blocked.
func (s *session) enqueue(inbox chan<- []byte, payload []byte) {
	s.stats.Payloads.Add(1)
	select {
	case inbox <- payload:
	default:
		s.stats.Dropped.Add(1)
	}
}

// loop processes payloads until ctx is done or inbox is closed.
func (s *session) loop(ctx context.Context, inbox <-chan []byte, ticker timeutil.Ticker) {
	for {
		select {
		case <-ctx.Done():
			return
		case payload, ok := <-inbox:
			if !ok {
				return
			}
			if err := s.handle(payload); err != nil {
				log.Printf("shotstream: %v", err)
			}
		case <-ticker.C():
			log.Printf("shotstream status: %s moving=%v", s.stats, s.engine.Movement().IsMoving)
		}
	}
}

// decodeSamples accepts a single JSON sample or an array of samples.
func decodeSamples(payload []byte) ([]imu.Sample, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return imu.ReadJSON(bytes.NewReader(trimmed))
	}
	samples, err := imu.ReadJSON(bytes.NewReader(append(append([]byte{'['}, trimmed...), ']')))
	if err != nil {
		return nil, err
	}
	return samples, nil
}

type movementEvent struct {
	T         int64   `json:"t"`
	Index     int64   `json:"index"`
	IsMoving  bool    `json:"is_moving"`
	Intensity float64 `json:"intensity"`
}

// handle feeds every sample in payload to the engine. Publish failures do
// not stop processing; they are joined and returned after the last sample.
func (s *session) handle(payload []byte) error {
	samples, err := decodeSamples(payload)
	if err != nil {
		s.stats.BadPayloads.Add(1)
		return fmt.Errorf("bad payload: %w", err)
	}
	var errs []error
	for _, sample := range samples {
		u := s.engine.Process(sample)
		s.stats.Samples.Add(1)

		if u.Transition {
			s.stats.Transitions.Add(1)
			ev := movementEvent{T: sample.T, Index: u.Index, IsMoving: u.Movement.IsMoving, Intensity: u.Movement.Intensity}
			if err := s.publishJSON(s.topics.Movement, ev); err != nil {
				errs = append(errs, err)
			}
		}
		if u.Shot != nil {
			s.stats.Shots.Add(1)
			if err := s.publishJSON(s.topics.Shots, u.Shot); err != nil {
				s.stats.PublishFailures.Add(1)
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (s *session) publishJSON(topic string, v interface{}) error {
	if s.pub == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := s.pub.Publish(topic, data); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}
