package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/tomekkedziera-maker/poczytajmy-backend/pkg/provider/asr"
	"github.com/tomekkedziera-maker/poczytajmy-backend/pkg/provider/chat"
	"github.com/tomekkedziera-maker/poczytajmy-backend/pkg/provider/tts"
)

// ErrProviderNotRegistered is returned by Create* methods when no factory has
// been registered under the requested provider name.
var ErrProviderNotRegistered = errors.New("config: provider not registered")

// Registry maps provider names to their constructor functions for each
// provider type. It is safe for concurrent use.
type Registry struct {
	mu   sync.RWMutex
	chat map[string]func(ProviderEntry) (chat.Provider, error)
	asr  map[string]func(ProviderEntry) (asr.Provider, error)
	tts  map[string]func(ProviderEntry) (tts.Provider, error)
}

// NewRegistry returns an empty, ready-to-use [Registry].
func NewRegistry() *Registry {
	return &Registry{
		chat: make(map[string]func(ProviderEntry) (chat.Provider, error)),
		asr:  make(map[string]func(ProviderEntry) (asr.Provider, error)),
		tts:  make(map[string]func(ProviderEntry) (tts.Provider, error)),
	}
}

// RegisterChat registers a chat provider factory under name.
// Subsequent calls with the same name overwrite the previous registration.
func (r *Registry) RegisterChat(name string, factory func(ProviderEntry) (chat.Provider, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chat[name] = factory
}

// RegisterASR registers an ASR provider factory under name.
func (r *Registry) RegisterASR(name string, factory func(ProviderEntry) (asr.Provider, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.asr[name] = factory
}

// RegisterTTS registers a TTS provider factory under name.
func (r *Registry) RegisterTTS(name string, factory func(ProviderEntry) (tts.Provider, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tts[name] = factory
}

// CreateChat instantiates a chat provider using the factory registered under
// entry.Name. Returns [ErrProviderNotRegistered] if no factory has been
// registered for that name.
func (r *Registry) CreateChat(entry ProviderEntry) (chat.Provider, error) {
	r.mu.RLock()
	factory, ok := r.chat[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: chat/%q", ErrProviderNotRegistered, entry.Name)
	}
	return factory(entry)
}

// CreateASR instantiates an ASR provider using the factory registered under entry.Name.
func (r *Registry) CreateASR(entry ProviderEntry) (asr.Provider, error) {
	r.mu.RLock()
	factory, ok := r.asr[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: asr/%q", ErrProviderNotRegistered, entry.Name)
	}
	return factory(entry)
}

// CreateTTS instantiates a TTS provider using the factory registered under entry.Name.
func (r *Registry) CreateTTS(entry ProviderEntry) (tts.Provider, error) {
	r.mu.RLock()
	factory, ok := r.tts[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: tts/%q", ErrProviderNotRegistered, entry.Name)
	}
	return factory(entry)
}
