package services

import (
	"context"
	"time"

	"github.com/yeremiapane/billiard-pos/billing"
	"github.com/yeremiapane/billiard-pos/queue"
	"github.com/yeremiapane/billiard-pos/utils"
)

// Broadcaster pushes events to connected floor displays.
type Broadcaster interface {
	Broadcast(event string, data interface{})
}

type nopBroadcaster struct{}

func (nopBroadcaster) Broadcast(string, interface{}) {}

// Options carries the collaborators and venue settings shared by services.
type Options struct {
	Rates     billing.Rates
	Location  *time.Location
	Tracker   *billing.Tracker
	Hub       Broadcaster
	Publisher queue.Publisher
	// Now is the clock; tests replace it.
	Now func() time.Time

	NoShowGraceMinutes    int
	UpcomingWindowMinutes int
}

func (o Options) withDefaults() Options {
	if o.Rates == (billing.Rates{}) {
		o.Rates = billing.DefaultRates()
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.Tracker == nil {
		o.Tracker = billing.NewTracker(billing.DefaultWarnSeconds)
	}
	if o.Hub == nil {
		o.Hub = nopBroadcaster{}
	}
	if o.Publisher == nil {
		o.Publisher = queue.NopPublisher{}
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.NoShowGraceMinutes <= 0 {
		o.NoShowGraceMinutes = 15
	}
	if o.UpcomingWindowMinutes <= 0 {
		o.UpcomingWindowMinutes = 5
	}
	return o
}

// publish sends an event after commit. Broker failures never fail the request.
func (o Options) publish(ctx context.Context, routingKey string, payload interface{}) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := o.Publisher.Publish(ctx, routingKey, payload); err != nil {
		utils.ErrorLogger.Errorf("publish %s: %v", routingKey, err)
	}
}

// clock is the current time in the venue timezone. All stored timestamps use
// it so range filters compare like with like on every driver.
func (o Options) clock() time.Time {
	return o.Now().In(o.Location)
}
