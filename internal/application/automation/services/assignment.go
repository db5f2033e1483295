package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"flowdesk/internal/domain/automation"
	"flowdesk/internal/domain/ticket"
	"flowdesk/internal/shared/logger"
)

// Agent is the assignment view of a support agent: availability, skill set,
// current load and optional location.
type Agent struct {
	ID             uint
	Skills         []string
	OpenTickets    int
	Latitude       *float64
	Longitude      *float64
	LastAssignedAt *time.Time
}

// AgentDirectory lists the agents currently available for assignment in an
// organization.
type AgentDirectory interface {
	ListAvailable(ctx context.Context, organizationID uint) ([]Agent, error)
}

// AssignmentService resolves assignment strategies against the agent
// directory. Every strategy falls back to lowest workload as the tie break
// so resolution is deterministic for a fixed directory ordering.
type AssignmentService struct {
	directory AgentDirectory
	logger    logger.Interface
}

func NewAssignmentService(directory AgentDirectory, log logger.Interface) *AssignmentService {
	return &AssignmentService{directory: directory, logger: log}
}

func (s *AssignmentService) Resolve(ctx context.Context, strategy automation.AssignStrategy, snap ticket.Snapshot) (uint, error) {
	agents, err := s.directory.ListAvailable(ctx, snap.OrganizationID)
	if err != nil {
		return 0, fmt.Errorf("list available agents: %w", err)
	}
	if len(agents) == 0 {
		return 0, fmt.Errorf("no available agents in organization %d", snap.OrganizationID)
	}

	switch strategy {
	case automation.StrategySkillMatch:
		return resolveSkillMatch(agents, snap), nil
	case automation.StrategyWorkload:
		return pickLeastLoaded(agents).ID, nil
	case automation.StrategyRoundRobin:
		return pickLeastRecentlyAssigned(agents).ID, nil
	case automation.StrategyNearest:
		return s.resolveNearest(agents, snap), nil
	default:
		return 0, fmt.Errorf("unknown assignment strategy %q", strategy)
	}
}

// resolveSkillMatch scores each agent by how many of the ticket's required
// skills they cover and assigns the best-covered one; ties go to the least
// loaded. Partial coverage still assigns: a 2-of-3 overlap beats leaving
// the ticket queued.
func resolveSkillMatch(agents []Agent, snap ticket.Snapshot) uint {
	if len(snap.RequiredSkills) == 0 {
		return pickLeastLoaded(agents).ID
	}

	bestScore := -1
	var best []Agent
	for _, agent := range agents {
		score := skillOverlap(agent.Skills, snap.RequiredSkills)
		switch {
		case score > bestScore:
			bestScore = score
			best = []Agent{agent}
		case score == bestScore:
			best = append(best, agent)
		}
	}
	return pickLeastLoaded(best).ID
}

// resolveNearest uses the ticket's latitude/longitude custom fields. When
// the ticket or an agent has no location, workload decides instead.
func (s *AssignmentService) resolveNearest(agents []Agent, snap ticket.Snapshot) uint {
	lat, lon, ok := ticketLocation(snap)
	if !ok {
		s.logger.Debugw("ticket has no location, falling back to workload",
			"ticket_id", snap.ID)
		return pickLeastLoaded(agents).ID
	}

	best := Agent{}
	bestDist := math.Inf(1)
	for _, agent := range agents {
		if agent.Latitude == nil || agent.Longitude == nil {
			continue
		}
		d := haversineKm(lat, lon, *agent.Latitude, *agent.Longitude)
		if d < bestDist || (d == bestDist && agent.OpenTickets < best.OpenTickets) {
			best = agent
			bestDist = d
		}
	}
	if math.IsInf(bestDist, 1) {
		return pickLeastLoaded(agents).ID
	}
	return best.ID
}

// pickLeastLoaded prefers the lowest open-ticket count; equal loads go to
// the agent whose last assignment is oldest.
func pickLeastLoaded(agents []Agent) Agent {
	best := agents[0]
	for _, agent := range agents[1:] {
		if agent.OpenTickets < best.OpenTickets ||
			(agent.OpenTickets == best.OpenTickets && olderAssignment(agent.LastAssignedAt, best.LastAssignedAt)) {
			best = agent
		}
	}
	return best
}

func pickLeastRecentlyAssigned(agents []Agent) Agent {
	best := agents[0]
	for _, agent := range agents[1:] {
		if olderAssignment(agent.LastAssignedAt, best.LastAssignedAt) {
			best = agent
		}
	}
	return best
}

// olderAssignment treats never-assigned as oldest.
func olderAssignment(a, b *time.Time) bool {
	if a == nil {
		return b != nil
	}
	if b == nil {
		return false
	}
	return a.Before(*b)
}

func skillOverlap(have, want []string) int {
	set := make(map[string]struct{}, len(have))
	for _, s := range have {
		set[s] = struct{}{}
	}
	overlap := 0
	for _, s := range want {
		if _, ok := set[s]; ok {
			overlap++
		}
	}
	return overlap
}

func ticketLocation(snap ticket.Snapshot) (lat, lon float64, ok bool) {
	lat, latOK := floatField(snap, "latitude")
	lon, lonOK := floatField(snap, "longitude")
	return lat, lon, latOK && lonOK
}

func floatField(snap ticket.Snapshot, name string) (float64, bool) {
	raw, ok := snap.Field(name)
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	}
	return 0, false
}

const earthRadiusKm = 6371.0

func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}
