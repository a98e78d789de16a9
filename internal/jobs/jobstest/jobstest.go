// Package jobstest provides in-memory stand-ins for the broker and the result
// store.
package jobstest

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/cuongbtq/petstore/internal/jobs"
	"github.com/cuongbtq/petstore/shared/logger"
)

// Store is a ResultStore backed by a map.
type Store struct {
	mu      sync.Mutex
	records map[string]*jobs.Job

	// GetErr, when set, is returned by Get.
	GetErr error
}

// NewStore creates an empty Store
func NewStore() *Store {
	return &Store{records: make(map[string]*jobs.Job)}
}

func (s *Store) Create(_ context.Context, job *jobs.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[job.ID]; ok {
		return fmt.Errorf("job %s already exists", job.ID)
	}
	s.records[job.ID] = clone(job)
	return nil
}

func (s *Store) Get(_ context.Context, id string) (*jobs.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.GetErr != nil {
		return nil, s.GetErr
	}
	job, ok := s.records[id]
	if !ok {
		return nil, jobs.ErrJobNotFound
	}
	return clone(job), nil
}

func (s *Store) Complete(_ context.Context, id string, result map[string]any) error {
	return s.finalize(id, func(j *jobs.Job) {
		j.Outcome = jobs.OutcomeSuccess
		j.Result = maps.Clone(result)
	})
}

func (s *Store) Fail(_ context.Context, id string, message string) error {
	return s.finalize(id, func(j *jobs.Job) {
		j.Outcome = jobs.OutcomeFailure
		j.Error = message
	})
}

func (s *Store) finalize(id string, apply func(*jobs.Job)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.records[id]
	if !ok {
		return jobs.ErrJobNotFound
	}
	if job.Finished() {
		return jobs.ErrAlreadyFinalized
	}
	apply(job)
	return nil
}

// IDs returns the recorded job ids.
func (s *Store) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Sorted(maps.Keys(s.records))
}

func clone(j *jobs.Job) *jobs.Job {
	c := *j
	c.Arguments = slices.Clone(j.Arguments)
	c.Result = maps.Clone(j.Result)
	return &c
}

// ErrBrokerDown is returned by a disconnected Broker.
var ErrBrokerDown = errors.New("broker down")

// Broker records published messages.
type Broker struct {
	mu        sync.Mutex
	messages  [][]byte
	connected bool

	// PublishErr, when set, is returned by PublishWithRetry.
	PublishErr error
}

// NewBroker returns a connected Broker
func NewBroker() *Broker {
	return &Broker{connected: true}
}

// SetConnected toggles the connection state.
func (b *Broker) SetConnected(connected bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.connected = connected
}

func (b *Broker) IsConnected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.connected
}

func (b *Broker) PublishWithRetry(_ context.Context, body []byte, _ string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.connected {
		return ErrBrokerDown
	}
	if b.PublishErr != nil {
		return b.PublishErr
	}
	b.messages = append(b.messages, slices.Clone(body))
	return nil
}

// Messages returns the decoded published messages in order.
func (b *Broker) Messages() []*jobs.Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]*jobs.Message, 0, len(b.messages))
	for _, body := range b.messages {
		msg, err := jobs.DecodeMessage(body)
		if err != nil {
			panic(err)
		}
		out = append(out, msg)
	}
	return out
}

// NewFacade wires a Facade over a fresh Broker and Store.
func NewFacade() (*jobs.Facade, *Broker, *Store) {
	broker := NewBroker()
	store := NewStore()
	nop := logger.NewNop().Logger
	queue := jobs.NewQueue(broker, store, nop)
	return jobs.NewFacade(queue, nop), broker, store
}
