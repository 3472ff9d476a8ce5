package monitor

import "testing"

func TestBrokerFanOut(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	all := b.Subscribe("")
	job := b.Subscribe("job")

	NewReporter(b, "job").SendProgress(50, nil)

	for i, s := range []*Subscription{all, job} {
		env := <-s.C
		if env.Data.Name != "job" || env.Data.State.Progress != 50 {
			t.Errorf("subscription %d got %+v", i, env)
		}
	}
}

func TestBrokerFiltersByName(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	s := b.Subscribe("backup")
	b.Send(NewProgressEnvelope("update", 10, nil))
	b.Send(NewProgressEnvelope("backup", 20, nil))

	env := <-s.C
	if env.Data.Name != "backup" {
		t.Errorf("got envelope for %q, want backup", env.Data.Name)
	}
	if len(s.C) != 0 {
		t.Errorf("%d unexpected envelopes queued", len(s.C))
	}
}

func TestSubscriptionClose(t *testing.T) {
	b := NewBroker()
	s := b.Subscribe("")
	s.Close()

	if _, ok := <-s.C; ok {
		t.Error("channel still open after Close")
	}
	// Sending with no subscriptions must not block.
	b.Send(NewProgressEnvelope("job", 1, nil))
	s.Close()
}

func TestBrokerClose(t *testing.T) {
	b := NewBroker()
	s := b.Subscribe("")
	b.Close()

	if _, ok := <-s.C; ok {
		t.Error("channel still open after broker Close")
	}
	if b.Subscribe("") != nil {
		t.Error("Subscribe on a closed broker returned a subscription")
	}
	s.Close()
	b.Send(NewProgressEnvelope("job", 1, nil))
}

func TestBrokerDropsForSlowSubscriber(t *testing.T) {
	b := NewBroker()
	defer b.Close()
	s := b.Subscribe("")

	for i := 0; i < 100; i++ {
		b.Send(NewProgressEnvelope("job", float64(i), nil))
	}
	if len(s.C) != subscriberBuffer {
		t.Errorf("buffered %d, want %d", len(s.C), subscriberBuffer)
	}
}

func TestBrokerSubscriberLimit(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	for i := 0; i < maxSubscribers; i++ {
		if b.Subscribe("") == nil {
			t.Fatalf("Subscribe %d returned nil", i)
		}
	}
	if b.Subscribe("") != nil {
		t.Error("Subscribe beyond the limit returned a subscription")
	}
}
