package scache

import (
	"sync"

	"github.com/sirupsen/logrus"

	"SCache/store"
)

const (
	DefaultURI   = "urn:scache:default"
	DefaultScope = "default"
)

// Provider is a registry of managers keyed by scope and URI. Managers are
// created on first request and released when they close.
type Provider struct {
	mutex    sync.Mutex
	managers map[string]map[string]*Manager
}

func NewProvider() *Provider {
	return &Provider{
		managers: make(map[string]map[string]*Manager),
	}
}

// Manager returns the manager registered for (uri, scope), creating it with
// opts when absent. An existing manager keeps the options it was created with.
// Empty uri and scope select DefaultURI and DefaultScope.
func (p *Provider) Manager(uri, scope string, opts store.Options) (*Manager, error) {
	if uri == "" {
		uri = DefaultURI
	}
	if scope == "" {
		scope = DefaultScope
	}

	p.mutex.Lock()
	defer p.mutex.Unlock()

	byURI, ok := p.managers[scope]
	if !ok {
		byURI = make(map[string]*Manager)
		p.managers[scope] = byURI
	}

	if m, ok := byURI[uri]; ok {
		if m.opts != opts {
			logrus.Warnf("manager %s in scope %s already exists, ignoring new options", uri, scope)
		}
		return m, nil
	}

	if err := opts.Validate(); err != nil {
		if len(byURI) == 0 {
			delete(p.managers, scope)
		}
		return nil, err
	}

	m := newManager(p, uri, scope, opts)
	byURI[uri] = m
	logrus.Debugf("manager %s created in scope %s", uri, scope)
	return m, nil
}

// DefaultManager returns the manager for DefaultURI in DefaultScope.
func (p *Provider) DefaultManager() (*Manager, error) {
	return p.Manager(DefaultURI, DefaultScope, store.DefaultOptions)
}

// CloseManager closes the manager registered for (uri, scope), if any.
func (p *Provider) CloseManager(uri, scope string) {
	p.mutex.Lock()
	m := p.managers[scope][uri]
	p.mutex.Unlock()

	if m != nil {
		m.Close()
	}
}

// CloseScope closes every manager in scope.
func (p *Provider) CloseScope(scope string) {
	p.mutex.Lock()
	managers := make([]*Manager, 0, len(p.managers[scope]))
	for _, m := range p.managers[scope] {
		managers = append(managers, m)
	}
	p.mutex.Unlock()

	for _, m := range managers {
		m.Close()
	}
}

// Close closes every manager the provider knows of.
func (p *Provider) Close() {
	p.mutex.Lock()
	var managers []*Manager
	for _, byURI := range p.managers {
		for _, m := range byURI {
			managers = append(managers, m)
		}
	}
	p.mutex.Unlock()

	for _, m := range managers {
		m.Close()
	}
}

func (p *Provider) releaseManager(uri, scope string) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	byURI, ok := p.managers[scope]
	if !ok {
		return
	}
	delete(byURI, uri)
	if len(byURI) == 0 {
		delete(p.managers, scope)
	}
}
