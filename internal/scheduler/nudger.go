package scheduler

import (
	"errors"
	"log"
	"time"

	"github.com/extrange/mcq-bot/internal/config"
	"github.com/extrange/mcq-bot/internal/services"
	"github.com/extrange/mcq-bot/internal/telegram"
)

// NudgeSender dispatches one nudge message to a user. Satisfied by
// TelegramSender in production and by fakes in tests.
type NudgeSender interface {
	SendNudge(userID int64, text string) error
}

// TelegramSender sends nudges through the bot client with an inline
// "I'm ready!" button whose callback starts a question.
type TelegramSender struct {
	Client *telegram.Client
}

func (s *TelegramSender) SendNudge(userID int64, text string) error {
	_, err := s.Client.SendMessage(userID, text, "", telegram.NudgeKeyboard())
	return err
}

// Nudger fires at each configured local time of day and reminds every
// scheduled user who has not met their daily question target. Triggers are
// computed as absolute instants in the configured zone and slept until, so
// firing dates follow that zone's calendar days regardless of the server's
// own zone, and each configured time fires at most once per day.
type Nudger struct {
	users  *services.UserService
	stats  *services.StatsService
	sender NudgeSender
	times  []config.NudgeTime
	loc    *time.Location

	stopCh chan struct{}
}

func NewNudger(
	users *services.UserService,
	stats *services.StatsService,
	sender NudgeSender,
	times []config.NudgeTime,
	loc *time.Location,
) *Nudger {
	return &Nudger{
		users:  users,
		stats:  stats,
		sender: sender,
		times:  times,
		loc:    loc,
		stopCh: make(chan struct{}),
	}
}

func (n *Nudger) Start() {
	go n.loop()
	log.Printf("[Nudger] started with triggers %v in %s", n.times, n.loc)
}

func (n *Nudger) Stop() {
	close(n.stopCh)
	log.Println("[Nudger] stopped")
}

func (n *Nudger) loop() {
	for {
		next := nextTrigger(time.Now().In(n.loc), n.times, n.loc)
		timer := time.NewTimer(time.Until(next))
		select {
		case <-n.stopCh:
			timer.Stop()
			return
		case <-timer.C:
			n.fire()
		}
	}
}

// fire runs one nudge cycle: best-effort broadcast, never a transaction.
// Per-user failures are logged and do not abort the remaining users; a
// dropped nudge is naturally retried at the next trigger while the user's
// target stays unmet.
func (n *Nudger) fire() {
	users, err := n.users.Scheduled(true)
	if err != nil {
		log.Printf("[Nudger] list scheduled users: %v", err)
		return
	}

	for _, user := range users {
		if err := n.nudgeUser(user.ID); err != nil {
			log.Printf("[Nudger] failed to nudge user %d: %v", user.ID, err)
		}
	}
}

func (n *Nudger) nudgeUser(userID int64) error {
	attempted, err := n.stats.AttemptedToday(userID)
	if err != nil {
		return err
	}
	target, err := n.stats.DailyTarget(userID)
	if err != nil {
		// The enumeration already excludes past exams, but the date can
		// roll over between the query and this computation.
		if errors.Is(err, services.ErrInvalidPacingWindow) {
			return nil
		}
		return err
	}

	if attempted >= target {
		return nil
	}

	stats, err := n.stats.Stats(userID)
	if err != nil {
		return err
	}

	text := telegram.FormatNudge(attempted, target, stats.DaysTillExam)
	if err := n.sender.SendNudge(userID, text); err != nil {
		return err
	}
	log.Printf("[Nudger] nudge sent to %d", userID)
	return nil
}

// nextTrigger returns the earliest upcoming occurrence of any configured
// time of day, strictly after now.
func nextTrigger(now time.Time, times []config.NudgeTime, loc *time.Location) time.Time {
	var next time.Time
	for _, t := range times {
		candidate := time.Date(now.Year(), now.Month(), now.Day(), t.Hour, t.Minute, 0, 0, loc)
		if !candidate.After(now) {
			candidate = candidate.AddDate(0, 0, 1)
		}
		if next.IsZero() || candidate.Before(next) {
			next = candidate
		}
	}
	return next
}
