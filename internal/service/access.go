package service

import (
	"context"
	"errors"
	"net/netip"
	"strings"
	"time"

	"github.com/Cab789/capstone/internal/model"
	"github.com/Cab789/capstone/internal/repository"
)

// ErrAllowanceExceeded is returned when a restricted case view would take the
// allowance below zero.
var ErrAllowanceExceeded = errors.New("case allowance too low")

// AccessService implements the case allowance rules. Each account holds a
// counter of restricted case views that refills once the expire window has
// elapsed; unlimited access (granted directly, or via harvard_access from a
// Harvard network address) bypasses the counter entirely.
type AccessService interface {
	// UnlimitedAccessInEffect reports whether the user currently bypasses
	// the allowance, taking the client address and expiry into account.
	UnlimitedAccessInEffect(u *model.User, clientIP string, now time.Time) bool

	// UpdateAllowance refills the allowance if its window has elapsed, then
	// spends n views. Returns ErrAllowanceExceeded when n exceeds what is
	// left; the refill is still persisted in that case.
	UpdateAllowance(ctx context.Context, u *model.User, n int, clientIP string) error

	// DownloadAllowed reports whether the user could spend n views without
	// going below zero. n <= 0 is always allowed.
	DownloadAllowed(ctx context.Context, u *model.User, n int, clientIP string) (bool, error)

	// IsKnownBot reports whether the user agent belongs to a configured
	// crawler. Crawlers may read restricted cases but responses must not be
	// cached.
	IsKnownBot(userAgent string) bool
}

type accessService struct {
	users        repository.UserRepository
	harvardNets  []netip.Prefix
	botAgents    []string
	expireWindow time.Duration
}

// NewAccessService constructs an AccessService. Invalid CIDR strings in
// harvardRanges are ignored.
func NewAccessService(users repository.UserRepository, harvardRanges, botAgents []string, expireHours int) AccessService {
	nets := make([]netip.Prefix, 0, len(harvardRanges))
	for _, r := range harvardRanges {
		if p, err := netip.ParsePrefix(strings.TrimSpace(r)); err == nil {
			nets = append(nets, p)
		}
	}
	return &accessService{
		users:        users,
		harvardNets:  nets,
		botAgents:    botAgents,
		expireWindow: time.Duration(expireHours) * time.Hour,
	}
}

func (s *accessService) fromHarvardIP(clientIP string) bool {
	addr, err := netip.ParseAddr(clientIP)
	if err != nil {
		return false
	}
	for _, n := range s.harvardNets {
		if n.Contains(addr) {
			return true
		}
	}
	return false
}

func (s *accessService) UnlimitedAccessInEffect(u *model.User, clientIP string, now time.Time) bool {
	access := u.UnlimitedAccess || (u.HarvardAccess && s.fromHarvardIP(clientIP))
	if !access {
		return false
	}
	if u.UnlimitedAccessUntil != nil && !u.UnlimitedAccessUntil.After(now) {
		return false
	}
	return true
}

// refresh refills the allowance in memory when the window has elapsed.
// Returns true if the counters changed.
func (s *accessService) refresh(u *model.User, now time.Time) bool {
	if now.Sub(u.CaseAllowanceLastUpdated) < s.expireWindow {
		return false
	}
	u.CaseAllowanceRemaining = u.TotalCaseAllowance
	u.CaseAllowanceLastUpdated = now
	return true
}

func (s *accessService) UpdateAllowance(ctx context.Context, u *model.User, n int, clientIP string) error {
	now := time.Now().UTC()
	if s.UnlimitedAccessInEffect(u, clientIP, now) {
		return nil
	}

	refreshed := s.refresh(u, now)
	if n > 0 && u.CaseAllowanceRemaining < n {
		if refreshed {
			if err := s.users.UpdateAllowance(ctx, u); err != nil {
				return err
			}
		}
		return ErrAllowanceExceeded
	}
	if n <= 0 && !refreshed {
		return nil
	}
	u.CaseAllowanceRemaining -= n
	return s.users.UpdateAllowance(ctx, u)
}

func (s *accessService) DownloadAllowed(ctx context.Context, u *model.User, n int, clientIP string) (bool, error) {
	if n <= 0 {
		return true, nil
	}
	now := time.Now().UTC()
	if s.UnlimitedAccessInEffect(u, clientIP, now) {
		return true, nil
	}
	if s.refresh(u, now) {
		if err := s.users.UpdateAllowance(ctx, u); err != nil {
			return false, err
		}
	}
	return u.CaseAllowanceRemaining >= n, nil
}

func (s *accessService) IsKnownBot(userAgent string) bool {
	for _, agent := range s.botAgents {
		if agent != "" && strings.Contains(userAgent, agent) {
			return true
		}
	}
	return false
}
