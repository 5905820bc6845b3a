package commands

import (
	"sync"

	"github.com/fivetwenty-io/rbt/internal/auth"
	"github.com/fivetwenty-io/rbt/pkg/rbt"
)

var (
	_ auth.ConfigPersister = (*ConfigPersister)(nil)
	_ rbt.SessionStore     = (*ConfigPersister)(nil)
)

// ConfigPersister saves login sessions to the configuration file.
type ConfigPersister struct {
	mutex sync.Mutex
}

// NewConfigPersister creates a new config persister.
func NewConfigPersister() *ConfigPersister {
	return &ConfigPersister{}
}

// UpdateSession stores the server and its session cookie in the config file.
func (p *ConfigPersister) UpdateSession(serverURL, sessionID string) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	config := loadConfig()
	config.URL = serverURL
	config.SessionID = sessionID

	return saveConfigStruct(config)
}
