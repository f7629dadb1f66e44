package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/rs/zerolog"

	"notes-service/internal/client"
	"notes-service/internal/converter"
)

const defaultAddress = "http://localhost:8080"

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).With().Timestamp().Logger()

	// Получаем адрес сервера из переменной окружения или используем значение по умолчанию
	address := os.Getenv("SERVER_ADDRESS")
	if address == "" {
		address = defaultAddress
	}

	// Токен нужен только если на сервере задан auth.token_hash
	c := client.New(address, os.Getenv("AUTH_TOKEN"), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Выбираем, какой сценарий запустить через переменную окружения или аргумент
	testType := os.Getenv("TEST_TYPE")
	if testType == "" && len(os.Args) > 1 {
		testType = os.Args[1]
	}

	switch testType {
	case "error":
		testErrorHandling(ctx, log, c)
	case "success", "":
		testSuccessfulRequest(ctx, log, c)
	default:
		log.Fatal().Str("test_type", testType).Msg("unknown test type, available: success, error")
	}
}

// testErrorHandling запрашивает заметки по несуществующему тегу
func testErrorHandling(ctx context.Context, log zerolog.Logger, c *client.Client) {
	_, err := c.NotesByTag(ctx, 1<<40)

	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		log.Info().Int("status", apiErr.StatusCode).Str("body", apiErr.Body).Msg("received expected error")
		return
	}
	log.Error().Err(err).Msg("unexpected result")
}

// testSuccessfulRequest создает заметку с тегами и ищет ее
func testSuccessfulRequest(ctx context.Context, log zerolog.Logger, c *client.Client) {
	name, content, tag := "Test note", "This is a test note content", "demo"

	created, err := c.CreateNote(ctx, converter.NoteDTO{
		Name:    &name,
		Content: &content,
		Tags:    []converter.TagDTO{{Name: &tag}},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create note")
	}
	log.Info().Int64("id", *created.ID).Time("created_at", created.CreatedAt.Time).Msg("created note")

	found, err := c.Search(ctx, "test note")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to search notes")
	}
	log.Info().Int("count", len(found)).Msg("search finished")

	tags, err := c.ListTags(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to list tags")
	}
	for _, t := range tags {
		log.Info().Int64("id", *t.ID).Str("name", *t.Name).Msg("tag")
	}
}
