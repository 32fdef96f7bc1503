package host

import "github.com/mcao2/button-layout/internal/layout"

// NotifyingStore announces every successful write on the storage channel
type NotifyingStore struct {
	layout.Store
	listener *Listener
}

func NewNotifyingStore(store layout.Store, listener *Listener) *NotifyingStore {
	return &NotifyingStore{Store: store, listener: listener}
}

func (s *NotifyingStore) Set(key string, value any) error {
	if err := s.Store.Set(key, value); err != nil {
		return err
	}
	s.listener.Send(ChannelStorage, Event{Type: TypeChange, Key: key, Value: value})
	return nil
}
