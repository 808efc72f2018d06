package domain

import "time"

// MediaItem is a transcoded upload waiting for its turn on screen.
type MediaItem struct {
	Locator         string
	DisplayDuration time.Duration
	Uploader        string
}
