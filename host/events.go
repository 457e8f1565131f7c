package host

import (
	"github.com/wippyai/contract-sdk/val"
)

// Event is one entry of the host's event log.
type Event struct {
	Contract val.Address
	topics   []portable
	data     portable
}

// Topics materializes the event's topic values into the current scope.
func (ev *Event) Topics(e val.Env) ([]val.Val, error) {
	topics := make([]val.Val, len(ev.topics))
	for i, p := range ev.topics {
		v, err := thaw(e, p)
		if err != nil {
			return nil, err
		}
		topics[i] = v
	}
	return topics, nil
}

// Data materializes the event's data payload into the current scope.
func (ev *Event) Data(e val.Env) (val.Val, error) {
	return thaw(e, ev.data)
}

func (h *Host) publishEvent(contract val.Address, topics []val.Val, data val.Val) error {
	ev := Event{Contract: contract, topics: make([]portable, len(topics))}
	for i, t := range topics {
		p, err := freeze(h, t)
		if err != nil {
			return err
		}
		ev.topics[i] = p
	}
	p, err := freeze(h, data)
	if err != nil {
		return err
	}
	ev.data = p
	h.events = append(h.events, ev)
	return nil
}

// Events returns the event log in publication order.
func (h *Host) Events() []Event {
	return h.events
}
