package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Dosada05/tournament-admin/models"
)

func matchPath(id, rest string) string {
	return "/matches/" + url.PathEscape(id) + "/" + rest
}

func (c *Client) ScheduleMatch(ctx context.Context, token, matchID string, req models.ScheduleMatchRequest) (*models.Match, error) {
	return doJSON[models.ScheduleMatchRequest, models.Match](ctx, c, token, http.MethodPut, matchPath(matchID, "schedule"), &req)
}

func (c *Client) RegisterLineup(ctx context.Context, token, matchID string, req models.RegisterLineupRequest) (*models.MessageResponse, error) {
	return doJSON[models.RegisterLineupRequest, models.MessageResponse](ctx, c, token, http.MethodPost, matchPath(matchID, "lineups"), &req)
}

func (c *Client) Lineups(ctx context.Context, token, matchID string) (*models.MatchLineups, error) {
	return doGet[models.MatchLineups](ctx, c, token, matchPath(matchID, "lineups"))
}

func (c *Client) AddEvent(ctx context.Context, token, matchID string, req models.MatchEventRequest) (*models.MatchEvent, error) {
	return doJSON[models.MatchEventRequest, models.MatchEvent](ctx, c, token, http.MethodPost, matchPath(matchID, "events"), &req)
}

func (c *Client) Events(ctx context.Context, token, matchID string) ([]models.MatchEvent, error) {
	rsp, err := doGet[[]models.MatchEvent](ctx, c, token, matchPath(matchID, "events"))
	if err != nil {
		return nil, err
	}
	return *rsp, nil
}

func (c *Client) AddSubstitution(ctx context.Context, token, matchID string, req models.SubstitutionRequest) (*models.MatchEvent, error) {
	return doJSON[models.SubstitutionRequest, models.MatchEvent](ctx, c, token, http.MethodPost, matchPath(matchID, "substitutions"), &req)
}
