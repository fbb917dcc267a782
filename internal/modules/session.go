// SPDX-License-Identifier: AGPL-3.0-or-later

// Package modules implements the hb workflows on top of resolved arguments.
// A Session holds at most one module per workflow; main builds it once and
// threads it through the commands.
package modules

import (
	"sync"

	"github.com/ohos-build/hb/internal/hberr"
)

// Session owns the workflow modules of one hb invocation.
type Session struct {
	mu    sync.RWMutex
	set   *SetModule
	build *BuildModule
	env   *EnvModule
	clean *CleanModule
}

func NewSession() *Session { return &Session{} }

func (s *Session) InitSet(m *SetModule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set = m
}

func (s *Session) InitBuild(m *BuildModule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.build = m
}

func (s *Session) InitEnv(m *EnvModule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.env = m
}

func (s *Session) InitClean(m *CleanModule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clean = m
}

// SetModule returns the set module or a not-initialized error.
func (s *Session) SetModule() (*SetModule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.set == nil {
		return nil, notInitialized("OHOSSetModule")
	}
	return s.set, nil
}

func (s *Session) BuildModule() (*BuildModule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.build == nil {
		return nil, notInitialized("OHOSBuildModule")
	}
	return s.build, nil
}

func (s *Session) EnvModule() (*EnvModule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.env == nil {
		return nil, notInitialized("OHOSEnvModule")
	}
	return s.env, nil
}

func (s *Session) CleanModule() (*CleanModule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.clean == nil {
		return nil, notInitialized("OHOSCleanModule")
	}
	return s.clean, nil
}

func notInitialized(name string) error {
	return hberr.Config(hberr.CodeNotInitialized, "%s has not been instantiated", name)
}
