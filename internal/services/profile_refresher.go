package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

const profileRefreshTimeout = 30 * time.Second

// ProfileRefresher re-reads the default user's profile from the user-data
// webhook on a cron schedule.
type ProfileRefresher struct {
	profiles *ProfileService
	userID   string
	schedule string
	cron     *cron.Cron
}

func NewProfileRefresher(profiles *ProfileService, userID, schedule string) *ProfileRefresher {
	return &ProfileRefresher{
		profiles: profiles,
		userID:   userID,
		schedule: schedule,
	}
}

// Start runs one refresh right away and then follows the schedule. It does
// nothing when no user-data webhook is configured.
func (r *ProfileRefresher) Start() error {
	if r.profiles == nil || !r.profiles.CanRefresh() {
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(r.schedule, r.run); err != nil {
		return fmt.Errorf("invalid profile refresh schedule %q: %w", r.schedule, err)
	}
	r.cron = c

	go r.run()
	c.Start()

	log.Printf("Profile refresher started (%s)", r.schedule)
	return nil
}

func (r *ProfileRefresher) Stop() {
	if r.cron == nil {
		return
	}
	<-r.cron.Stop().Done()
}

func (r *ProfileRefresher) run() {
	ctx, cancel := context.WithTimeout(context.Background(), profileRefreshTimeout)
	defer cancel()

	if _, err := r.profiles.Refresh(ctx, r.userID); err != nil {
		log.Printf("profile refresh: %v", err)
	}
}
