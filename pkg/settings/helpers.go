package settings

import (
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

func (s Setting) GetBool() bool {
	v, err := strconv.ParseBool(s.Get())
	if err != nil {
		logrus.Debugf("[settings] invalid bool for %s: %v", s.Name, err)
		return false
	}
	return v
}

// GetDuration falls back to the default when the current value does not parse.
func (s Setting) GetDuration() time.Duration {
	d, err := time.ParseDuration(s.Get())
	if err == nil {
		return d
	}
	logrus.Debugf("[settings] invalid duration for %s: %v", s.Name, err)
	d, _ = time.ParseDuration(settings[s.Name].Default)
	return d
}

// MapProvider is a Provider backed by a plain map.
type MapProvider struct {
	values map[string]string
}

func NewMapProvider() *MapProvider {
	return &MapProvider{values: map[string]string{}}
}

func (m *MapProvider) Get(name string) string {
	return m.values[name]
}

func (m *MapProvider) Set(name, value string) error {
	m.values[name] = value
	return nil
}

func (m *MapProvider) SetAll(all map[string]Setting) error {
	for name, s := range all {
		if _, ok := m.values[name]; !ok {
			m.values[name] = s.Default
		}
	}
	return nil
}
