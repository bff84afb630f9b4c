package persistence

import (
	"context"
	"fmt"
	"net/http"
)

type PHRepo struct {
	BaseHeaders []string
	ApiKey      string
	Client      *http.Client
}

func (r PHRepo) Capture(eventType string, runId string) error {
	url := "https://eu.posthog.com/capture/"
	body := []byte(fmt.Sprintf(`{
		"api_key": "%s",
		"event": "%s",
		"properties": {
			"distinct_id": "%s"}}`, r.ApiKey, eventType, runId))

	_, err := request[struct{}](context.TODO(), r.Client,
		reqConfig{Method: "POST", Url: url, Headers: r.BaseHeaders, Body: body}, 200)

	if err != nil {
		return err
	}

	return nil
}
