package settings

import (
	"os"
	"strings"
)

var (
	settings = map[string]Setting{}
	provider Provider

	Backend           = newSetting("backend", "norman")
	ClusterID         = newSetting("cluster-id", "")
	Insecure          = newSetting("insecure", "false")
	Kubeconfig        = newSetting("kubeconfig", "")
	LoadTimeout       = newSetting("load-timeout", "30s")
	Locale            = newSetting("locale", "en")
	MetricsListen     = newSetting("metrics-listen", "")
	RefreshCron       = newSetting("refresh-cron", "@every 1m")
	ServerURL         = newSetting("server-url", "")
	SystemProjectLink = newSetting("system-project-link", "")
	Token             = newSetting("token", "")
)

type Provider interface {
	Get(name string) string
	Set(name, value string) error
	SetAll(settings map[string]Setting) error
}

type Setting struct {
	Name     string
	Default  string
	ReadOnly bool
}

func (s Setting) Set(value string) error {
	if provider == nil {
		s, ok := settings[s.Name]
		if ok {
			s.Default = value
			settings[s.Name] = s
		}
	} else {
		return provider.Set(s.Name, value)
	}
	return nil
}

// Get resolves the provider first, then a CATTLE_<NAME> environment variable,
// then the default.
func (s Setting) Get() string {
	if provider != nil {
		return provider.Get(s.Name)
	}
	if v, ok := os.LookupEnv(s.EnvVar()); ok && v != "" {
		return v
	}
	return settings[s.Name].Default
}

// EnvVar is the environment variable that overrides the setting.
func (s Setting) EnvVar() string {
	return "CATTLE_" + strings.ToUpper(strings.ReplaceAll(s.Name, "-", "_"))
}

func SetProvider(p Provider) error {
	if err := p.SetAll(settings); err != nil {
		return err
	}
	provider = p
	return nil
}

func newSetting(name, def string) Setting {
	s := Setting{
		Name:    name,
		Default: def,
	}
	settings[s.Name] = s
	return s
}
