package models

import (
	"encoding/json"
	"io"
)

type Team struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Shield      *string         `json:"shield,omitempty"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
	Players     []Player        `json:"players,omitempty"`
	Tournaments json.RawMessage `json:"tournaments,omitempty"`
}

type PlayerPivot struct {
	ID        string `json:"id"`
	TeamID    string `json:"team_id"`
	PlayerID  string `json:"player_id"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type Player struct {
	ID                   string       `json:"id"`
	Position             string       `json:"position"`
	Jersey               int          `json:"jersey"`
	BirthDay             string       `json:"birthDay"`
	FirstName            string       `json:"first_name"`
	LastName             string       `json:"last_name"`
	IdentificationNumber string       `json:"identification_number"`
	EPS                  string       `json:"eps"`
	TeamID               string       `json:"team_id"`
	CreatedAt            string       `json:"created_at"`
	UpdatedAt            string       `json:"updated_at"`
	Pivot                *PlayerPivot `json:"pivot,omitempty"`
}

type CreatePlayerRequest struct {
	Position             string `json:"position"`
	Jersey               int    `json:"jersey"`
	BirthDay             string `json:"birthDay"`
	FirstName            string `json:"first_name"`
	LastName             string `json:"last_name"`
	IdentificationNumber string `json:"identification_number"`
	EPS                  string `json:"eps"`
	TeamID               string `json:"team_id"`
}

type PlayerImportResult struct {
	Message string   `json:"message"`
	Players []Player `json:"players"`
}

// FileUpload - файл от фронтенда, пересылаемый как multipart.
type FileUpload struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

type CreateTeamRequest struct {
	Name   string
	Shield *FileUpload
}

// Download - бинарный ответ (например, шаблон импорта игроков).
type Download struct {
	ContentType        string
	ContentDisposition string
	Body               []byte
}
