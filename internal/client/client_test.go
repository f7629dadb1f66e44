package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	httpapi "notes-service/internal/api/http"
	"notes-service/internal/config"
	"notes-service/internal/converter"
	"notes-service/internal/repository/memory"
	notesService "notes-service/internal/service/notes"
	tagsService "notes-service/internal/service/tags"
)

func newTestServer(t *testing.T, tokenHash string) *httptest.Server {
	t.Helper()

	cfg := &config.Config{
		Server:  &config.ConfigServer{MissingEntityStatus: http.StatusNotFound},
		Gateway: &config.ConfigGateway{CORSAllowedOrigins: "*", RateLimitRPS: 1000, RateLimitBurst: 1000},
		Auth:    &config.ConfigAuth{TokenHash: tokenHash},
	}

	store := memory.NewStore()
	noteRepo := memory.NewNoteRepository(store)
	tagRepo := memory.NewTagRepository(store)
	h := httpapi.NewHandler(
		notesService.NewNoteService(noteRepo, tagRepo, zerolog.Nop()),
		tagsService.NewTagService(tagRepo),
		cfg.Server.MissingEntityStatus,
	)

	ts := httptest.NewServer(httpapi.NewRouter(h, cfg, zerolog.Nop(), nil))
	t.Cleanup(ts.Close)
	return ts
}

func ptr[T any](v T) *T { return &v }

func TestClient_RoundTrip(t *testing.T) {
	ts := newTestServer(t, "")
	c := New(ts.URL+"/", "", ts.Client())
	ctx := context.Background()

	created, err := c.CreateNote(ctx, converter.NoteDTO{
		Name:    ptr("plan"),
		Content: ptr("buy milk/bread"),
		Tags:    []converter.TagDTO{{Name: ptr("shop")}},
	})
	require.NoError(t, err)
	require.NotNil(t, created.ID)

	notes, err := c.Search(ctx, "milk/bread")
	require.NoError(t, err)
	assert.Len(t, notes, 1)

	notes, err = c.NotesSince(ctx, created.CreatedAt.Add(-time.Minute))
	require.NoError(t, err)
	assert.Len(t, notes, 1)

	tags, err := c.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 1)

	notes, err = c.NotesByTag(ctx, *tags[0].ID)
	require.NoError(t, err)
	assert.Len(t, notes, 1)

	created.Content = ptr("buy tea")
	updated, err := c.UpdateNote(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, "buy tea", *updated.Content)

	require.NoError(t, c.DeleteNote(ctx, *created.ID))

	notes, err = c.ListNotes(ctx)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestClient_APIError(t *testing.T) {
	ts := newTestServer(t, "")
	c := New(ts.URL, "", ts.Client())

	_, err := c.NotesByTag(context.Background(), 7)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr), "expected APIError, got %v", err)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "No tag with this id", apiErr.Body)
}

func TestClient_Token(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("token"), bcrypt.MinCost)
	require.NoError(t, err)
	ts := newTestServer(t, string(hash))

	_, err = New(ts.URL, "", ts.Client()).ListNotes(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)

	notes, err := New(ts.URL, "token", ts.Client()).ListNotes(context.Background())
	require.NoError(t, err)
	assert.Empty(t, notes)
}
