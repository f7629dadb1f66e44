package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"notes-service/internal/converter"
)

// APIError ответ сервера с кодом, отличным от 200
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notes api: status %d: %s", e.StatusCode, e.Body)
}

// Client HTTP клиент для Notes Service
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New создает клиента. Пустой token не добавляет заголовок авторизации,
// httpClient nil заменяется на http.DefaultClient
func New(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
	}
}

// ListNotes возвращает все заметки
func (c *Client) ListNotes(ctx context.Context) ([]converter.NoteDTO, error) {
	var notes []converter.NoteDTO
	err := c.do(ctx, http.MethodGet, "/notes", nil, &notes)
	return notes, err
}

// NotesByTag возвращает заметки с тегом tagID
func (c *Client) NotesByTag(ctx context.Context, tagID int64) ([]converter.NoteDTO, error) {
	var notes []converter.NoteDTO
	err := c.do(ctx, http.MethodGet, "/notes/tag/"+strconv.FormatInt(tagID, 10), nil, &notes)
	return notes, err
}

// NotesSince возвращает заметки, созданные не раньше since
func (c *Client) NotesSince(ctx context.Context, since time.Time) ([]converter.NoteDTO, error) {
	var notes []converter.NoteDTO
	err := c.do(ctx, http.MethodGet, "/notes/since/"+url.PathEscape(since.Format(time.RFC3339Nano)), nil, &notes)
	return notes, err
}

// Search ищет заметки по подстроке
func (c *Client) Search(ctx context.Context, query string) ([]converter.NoteDTO, error) {
	var notes []converter.NoteDTO
	err := c.do(ctx, http.MethodGet, "/notes/search/"+url.PathEscape(query), nil, &notes)
	return notes, err
}

// CreateNote создает заметку
func (c *Client) CreateNote(ctx context.Context, note converter.NoteDTO) (converter.NoteDTO, error) {
	var created converter.NoteDTO
	err := c.do(ctx, http.MethodPut, "/notes", note, &created)
	return created, err
}

// UpdateNote обновляет заметку, note.ID обязателен
func (c *Client) UpdateNote(ctx context.Context, note converter.NoteDTO) (converter.NoteDTO, error) {
	var updated converter.NoteDTO
	err := c.do(ctx, http.MethodPost, "/notes", note, &updated)
	return updated, err
}

// DeleteNote удаляет заметку по id
func (c *Client) DeleteNote(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/notes", converter.NoteDTO{ID: &id}, nil)
}

// ListTags возвращает все теги
func (c *Client) ListTags(ctx context.Context) ([]converter.TagDTO, error) {
	var tags []converter.TagDTO
	err := c.do(ctx, http.MethodGet, "/tags", nil, &tags)
	return tags, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("json.Marshal: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("http.NewRequestWithContext: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(msg)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}
