package events

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog/log"
)

// Router owns an in-process pub/sub and the handlers consuming it.
type Router struct {
	logger     watermill.LoggerAdapter
	Publisher  message.Publisher
	Subscriber message.Subscriber
	router     *message.Router
	bufferSize int64
}

type RouterOption func(*Router)

func WithLogger(logger watermill.LoggerAdapter) RouterOption {
	return func(r *Router) {
		r.logger = logger
	}
}

func WithVerbose(verbose bool) RouterOption {
	return func(r *Router) {
		if verbose {
			r.logger = NewWatermill(log.Logger)
		}
	}
}

// WithBufferSize sets the per subscriber channel buffer.
func WithBufferSize(size int64) RouterOption {
	return func(r *Router) {
		r.bufferSize = size
	}
}

func NewRouter(options ...RouterOption) (*Router, error) {
	ret := &Router{
		logger:     watermill.NopLogger{},
		bufferSize: 64,
	}
	for _, o := range options {
		o(ret)
	}

	// publishing must not wait for consumers, turns are answered first
	goPubSub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: ret.bufferSize,
	}, ret.logger)
	ret.Publisher = goPubSub
	ret.Subscriber = goPubSub

	router, err := message.NewRouter(message.RouterConfig{}, ret.logger)
	if err != nil {
		return nil, err
	}
	ret.router = router

	return ret, nil
}

// Close closes the publisher and the router.
func (r *Router) Close() error {
	if err := r.Publisher.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close pubsub")
	}
	if err := r.router.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close router")
		return err
	}
	return nil
}

// AddHandler consumes topic with f. Handlers must be added before Run.
func (r *Router) AddHandler(name string, topic string, f func(msg *message.Message) error) {
	r.router.AddNoPublisherHandler(name, topic, r.Subscriber, f)
}

func (r *Router) Running() chan struct{} {
	return r.router.Running()
}

func (r *Router) IsRunning() bool {
	return r.router.IsRunning()
}

// Run blocks until ctx is cancelled or the router is closed.
func (r *Router) Run(ctx context.Context) error {
	return r.router.Run(ctx)
}
