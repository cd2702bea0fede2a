// Package i18n resolves the symbolic message keys used for notification titles.
package i18n

import (
	"embed"
	"io/fs"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pkg/errors"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

const (
	ParseConfigError   = "cis.scan.detail.error.parseConfig"
	CreateDefaultError = "cis.scan.detail.error.createDefault"
	SaveConfigError    = "cis.scan.detail.error.saveConfig"
	LoadConfigError    = "cis.scan.detail.error.loadConfig"
	RunScanError       = "cis.scan.detail.error.runScan"
)

//go:embed locales/*.yaml
var localeFS embed.FS

type Translator interface {
	T(key string) string
}

type bundleTranslator struct {
	localizer *i18n.Localizer
}

// New loads the embedded locale files and localizes into the first matching
// language of langs, falling back to English.
func New(langs ...string) (Translator, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)

	files, err := fs.ReadDir(localeFS, "locales")
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		data, err := localeFS.ReadFile("locales/" + f.Name())
		if err != nil {
			return nil, err
		}
		if _, err := bundle.ParseMessageFileBytes(data, f.Name()); err != nil {
			return nil, errors.Wrapf(err, "parsing locale file %s", f.Name())
		}
	}

	return &bundleTranslator{localizer: i18n.NewLocalizer(bundle, langs...)}, nil
}

// T returns the key itself when no translation exists.
func (b *bundleTranslator) T(key string) string {
	msg, err := b.localizer.Localize(&i18n.LocalizeConfig{MessageID: key})
	if err != nil || msg == "" {
		return key
	}
	return msg
}
