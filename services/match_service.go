package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/tournament-admin/live"
	"github.com/Dosada05/tournament-admin/models"
)

// Broadcaster рассылает изменения матча подписчикам его комнаты.
type Broadcaster interface {
	BroadcastToRoom(roomID string, msgType string, payload any)
}

type MatchService interface {
	Schedule(ctx context.Context, token, matchID string, req models.ScheduleMatchRequest) (*models.Match, error)
	RegisterLineup(ctx context.Context, token, matchID string, req models.RegisterLineupRequest) (*models.MessageResponse, error)
	Lineups(ctx context.Context, token, matchID string) (*models.MatchLineups, error)
	AddEvent(ctx context.Context, token, matchID string, req models.MatchEventRequest) (*models.MatchEvent, error)
	Events(ctx context.Context, token, matchID string) ([]models.MatchEvent, error)
	AddSubstitution(ctx context.Context, token, matchID string, req models.SubstitutionRequest) (*models.MatchEvent, error)
}

type matchService struct {
	api MatchAPI
	hub Broadcaster
	log *slog.Logger
}

// NewMatchService. hub может быть nil, тогда изменения никуда не рассылаются.
func NewMatchService(api MatchAPI, hub Broadcaster, log *slog.Logger) MatchService {
	return &matchService{api: api, hub: hub, log: log}
}

func (s *matchService) broadcast(matchID, msgType string, payload any) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToRoom(live.MatchRoom(matchID), msgType, payload)
}

func (s *matchService) Schedule(ctx context.Context, token, matchID string, req models.ScheduleMatchRequest) (*models.Match, error) {
	if err := requireFields(map[string]string{"match_date": req.MatchDate}); err != nil {
		return nil, err
	}
	m, err := s.api.ScheduleMatch(ctx, token, matchID, req)
	if err != nil {
		return nil, fmt.Errorf("schedule match %s: %w", matchID, mapAPIError(err))
	}
	s.broadcast(matchID, live.MessageMatchScheduled, m)
	return m, nil
}

func (s *matchService) RegisterLineup(ctx context.Context, token, matchID string, req models.RegisterLineupRequest) (*models.MessageResponse, error) {
	if err := requireFields(map[string]string{"team_id": req.TeamID}); err != nil {
		return nil, err
	}
	if len(req.Players) == 0 {
		return nil, &FieldError{Field: "players", Message: "at least one player is required"}
	}
	shirts := make(map[int]bool, len(req.Players))
	for _, p := range req.Players {
		if strings.TrimSpace(p.PlayerID) == "" {
			return nil, &FieldError{Field: "players", Message: "player_id is required"}
		}
		if p.ShirtNumber <= 0 {
			return nil, &FieldError{Field: "players", Message: "shirt_number must be a positive integer"}
		}
		if shirts[p.ShirtNumber] {
			return nil, &FieldError{Field: "players", Message: fmt.Sprintf("shirt number %d is used twice", p.ShirtNumber)}
		}
		shirts[p.ShirtNumber] = true
	}

	rsp, err := s.api.RegisterLineup(ctx, token, matchID, req)
	if err != nil {
		return nil, fmt.Errorf("register lineup for match %s: %w", matchID, mapAPIError(err))
	}
	s.broadcast(matchID, live.MessageLineupUpdated, req)
	return rsp, nil
}

func (s *matchService) Lineups(ctx context.Context, token, matchID string) (*models.MatchLineups, error) {
	l, err := s.api.Lineups(ctx, token, matchID)
	if err != nil {
		return nil, fmt.Errorf("lineups of match %s: %w", matchID, mapAPIError(err))
	}
	return l, nil
}

// AddEvent записывает событие матча. Замены идут только через AddSubstitution.
func (s *matchService) AddEvent(ctx context.Context, token, matchID string, req models.MatchEventRequest) (*models.MatchEvent, error) {
	if err := requireFields(map[string]string{"player_id": req.PlayerID}); err != nil {
		return nil, err
	}
	if !req.Type.Recordable() {
		return nil, &FieldError{Field: "type", Message: ErrEventNotRecorded.Error()}
	}
	if req.Minute != nil && *req.Minute < 0 {
		return nil, &FieldError{Field: "minute", Message: "must not be negative"}
	}

	ev, err := s.api.AddEvent(ctx, token, matchID, req)
	if err != nil {
		return nil, fmt.Errorf("add event to match %s: %w", matchID, mapAPIError(err))
	}
	s.log.Info("match event recorded",
		slog.String("match_id", matchID),
		slog.String("type", string(ev.Type)))
	s.broadcast(matchID, live.MessageEventRecorded, ev)
	return ev, nil
}

func (s *matchService) Events(ctx context.Context, token, matchID string) ([]models.MatchEvent, error) {
	events, err := s.api.Events(ctx, token, matchID)
	if err != nil {
		return nil, fmt.Errorf("events of match %s: %w", matchID, mapAPIError(err))
	}
	return events, nil
}

func (s *matchService) AddSubstitution(ctx context.Context, token, matchID string, req models.SubstitutionRequest) (*models.MatchEvent, error) {
	if err := requireFields(map[string]string{
		"player_out_id": req.PlayerOutID,
		"player_in_id":  req.PlayerInID,
	}); err != nil {
		return nil, err
	}
	if req.PlayerOutID == req.PlayerInID {
		return nil, &FieldError{Field: "player_in_id", Message: "must differ from player_out_id"}
	}
	if req.Minute < 0 {
		return nil, &FieldError{Field: "minute", Message: "must not be negative"}
	}

	ev, err := s.api.AddSubstitution(ctx, token, matchID, req)
	if err != nil {
		return nil, fmt.Errorf("add substitution to match %s: %w", matchID, mapAPIError(err))
	}
	s.broadcast(matchID, live.MessageSubstitution, ev)
	return ev, nil
}
