package swipe

import (
	"log"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/dev-nick421/immich-swipe/internal/core/domain"
	"github.com/dev-nick421/immich-swipe/internal/core/services"
)

// WatchSettings pushes order and skip_videos edits of the config file into
// the settings store. It is a no-op when no config file was read.
func WatchSettings(v *viper.Viper, settings *services.SettingsStore) {
	if v.ConfigFileUsed() == "" {
		return
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		if e.Op&(fsnotify.Write|fsnotify.Create) == 0 {
			return
		}
		ApplyFileSettings(v, settings)
	})
	v.WatchConfig()
}

func ApplyFileSettings(v *viper.Viper, settings *services.SettingsStore) {
	order, err := domain.ParseOrderMode(v.GetString("order"))
	if err != nil {
		log.Printf("config change ignored: %v", err)
		return
	}
	next := services.Settings{Order: order, SkipVideos: v.GetBool("skip_videos")}
	if err := settings.Update(next); err != nil {
		log.Printf("applying config change: %v", err)
	}
}
