package bidding

import (
	"time"

	"auction-engine/utils"
)

// Sweeper periodically closes expired auctions in the background. It is the
// only component that advances auctions past their end time; everything else
// treats expiry as read-only.
type Sweeper struct {
	svc      *BiddingService
	interval time.Duration
	stopChan chan struct{}
}

// NewSweeper creates a sweeper running CloseExpiredAuctions every interval.
func NewSweeper(svc *BiddingService, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Sweeper{
		svc:      svc,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start runs the sweep loop until Stop is called. Blocking; run in a
// goroutine.
func (s *Sweeper) Start() {
	utils.Info("auction sweeper started", map[string]any{
		"interval": s.interval.String(),
	})

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopChan:
			utils.Info("auction sweeper stopped", nil)
			return
		}
	}
}

// Stop signals the sweep loop to exit.
func (s *Sweeper) Stop() {
	close(s.stopChan)
}

func (s *Sweeper) sweep() {
	closed, err := s.svc.CloseExpiredAuctions(s.svc.clock.Now())
	if err != nil {
		utils.Error("auction sweep failed", map[string]any{"error": err.Error()})
		return
	}
	if closed > 0 {
		utils.Info("closed expired auctions", map[string]any{"count": closed})
	}
}
