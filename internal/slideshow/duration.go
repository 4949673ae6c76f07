package slideshow

import (
	"time"

	"github.com/djnacci/backend/internal/models"
)

// minVideoDuration keeps a misconfigured clip from spinning the timer
const minVideoDuration = time.Second

// Duration returns how long an item stays on screen.
//
// Images and YouTube embeds use their configured duration. Videos play
// from videoStartTime to videoEndTime, with 0 and 15 seconds assumed when
// unset, and never less than one second.
func Duration(item models.MediaItem) time.Duration {
	if item.Type != models.MediaTypeVideo {
		return time.Duration(item.Duration) * time.Second
	}

	start, end := clipBounds(item)
	return max(minVideoDuration, time.Duration(end-start)*time.Second)
}

func clipBounds(item models.MediaItem) (start, end int) {
	start, end = models.DefaultVideoStartTime, models.DefaultVideoEndTime
	if item.VideoStartTime != nil {
		start = *item.VideoStartTime
	}
	if item.VideoEndTime != nil {
		end = *item.VideoEndTime
	}
	return start, end
}
