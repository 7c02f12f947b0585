package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Dosada05/tournament-admin/models"
)

func (c *Client) Teams(ctx context.Context, token string, all bool) ([]models.Team, error) {
	path := "/teams"
	if all {
		path += "?all=true"
	}
	rsp, err := doGet[[]models.Team](ctx, c, token, path)
	if err != nil {
		return nil, err
	}
	return *rsp, nil
}

func (c *Client) Team(ctx context.Context, token, id string) (*models.Team, error) {
	return doGet[models.Team](ctx, c, token, "/teams/"+url.PathEscape(id))
}

// CreateTeam отправляет команду как multipart: name и необязательный shield.
func (c *Client) CreateTeam(ctx context.Context, token string, req models.CreateTeamRequest) (*models.Team, error) {
	return doMultipart[models.Team](ctx, c, token, "/teams",
		map[string]string{"name": req.Name},
		formFile{field: "shield", file: req.Shield})
}

func (c *Client) CreatePlayer(ctx context.Context, token string, req models.CreatePlayerRequest) (*models.Player, error) {
	return doJSON[models.CreatePlayerRequest, models.Player](ctx, c, token, http.MethodPost, "/players", &req)
}

// ImportPlayers загружает файл игроков. fields уходят в форму вместе с файлом (например team_id).
func (c *Client) ImportPlayers(ctx context.Context, token string, file *models.FileUpload, fields map[string]string) (*models.PlayerImportResult, error) {
	if file == nil {
		return nil, fmt.Errorf("import players: no file")
	}
	return doMultipart[models.PlayerImportResult](ctx, c, token, "/players/import", fields, formFile{field: "file", file: file})
}

func (c *Client) PlayerTemplate(ctx context.Context, token string) (*models.Download, error) {
	return c.download(ctx, token, "/players/template")
}
