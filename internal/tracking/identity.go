package tracking

import "github.com/google/uuid"

// ClientIDKey is the session key holding the visitor's client id.
const ClientIDKey = "client_id"

// SessionValues is a per-visitor string map the tracker reads and writes
// the client id through.
type SessionValues interface {
	Get(key string) (string, bool)
	Set(key, value string)
}

// ClientID returns the visitor's client id, generating and storing a new
// random UUID on first access. It never fails.
func ClientID(values SessionValues) string {
	if id, ok := values.Get(ClientIDKey); ok && id != "" {
		return id
	}
	id := uuid.NewString()
	values.Set(ClientIDKey, id)
	return id
}

// memoryValues backs requests that carry no session.
type memoryValues map[string]string

func (m memoryValues) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func (m memoryValues) Set(key, value string) {
	m[key] = value
}
