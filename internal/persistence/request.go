package persistence

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/felixbrock/promptforge/internal/app"
)

type reqConfig struct {
	Method  string
	Url     string
	Headers []string
	Body    []byte
}

// ResponseError reports a response whose status code did not match the
// expected one. The status code is kept so callers can spot rate limits.
type ResponseError struct {
	StatusCode int
	Body       string
}

func (e ResponseError) Error() string {
	return fmt.Sprintf("unexpected response status code %d: %s", e.StatusCode, e.Body)
}

func request[T any](ctx context.Context, client *http.Client, config reqConfig, expectedResCode int) (*T, error) {
	req, err := http.NewRequestWithContext(ctx, config.Method, config.Url, bytes.NewBuffer(config.Body))

	if err != nil {
		return nil, err
	}

	for i := 0; i < len(config.Headers); i++ {
		headerKV := strings.SplitN(config.Headers[i], ":", 2)
		req.Header.Add(headerKV[0], strings.TrimSpace(headerKV[1]))
	}

	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)

	if err != nil {
		return nil, err
	}

	if resp.StatusCode != expectedResCode {
		// Error bodies may be empty; read leniently to keep the status code.
		body, readErr := io.ReadAll(resp.Body)
		if readErr == nil {
			readErr = resp.Body.Close()
		}
		if readErr != nil {
			slog.Error(fmt.Sprintf("Error occured: %s", readErr.Error()))
		}
		return nil, ResponseError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	body, err := app.Read(resp.Body)

	if err != nil {
		return nil, err
	}

	var t *T
	t, err = app.ReadJSON[T](body)

	if err != nil {
		return nil, err
	}

	return t, nil
}
