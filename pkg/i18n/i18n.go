package i18n

import (
	"embed"
	"encoding/json"
	"sync"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var locales embed.FS

var (
	mu     sync.RWMutex
	bundle *goi18n.Bundle
)

// Init resets the bundle and loads the embedded catalogs. English is the fallback language.
func Init() {
	b := goi18n.NewBundle(language.English)
	b.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, _ := locales.ReadDir("locales")
	for _, e := range entries {
		data, err := locales.ReadFile("locales/" + e.Name())
		if err != nil {
			continue
		}
		b.MustParseMessageFileBytes(data, e.Name())
	}

	mu.Lock()
	bundle = b
	mu.Unlock()
}

// Load adds a catalog from disk on top of the embedded ones, e.g. locales/active.hi.json.
func Load(path string) error {
	ensure()
	mu.Lock()
	defer mu.Unlock()
	_, err := bundle.LoadMessageFile(path)
	return err
}

// Localize renders messageID for the first matching language in langs, which may be raw
// Accept-Language values. The message ID is returned when no catalog has it.
func Localize(messageID string, data map[string]interface{}, langs ...string) string {
	ensure()
	mu.RLock()
	b := bundle
	mu.RUnlock()

	msg, err := goi18n.NewLocalizer(b, langs...).Localize(&goi18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	})
	if err != nil && msg == "" {
		return messageID
	}
	return msg
}

func ensure() {
	mu.RLock()
	ready := bundle != nil
	mu.RUnlock()
	if !ready {
		Init()
	}
}
