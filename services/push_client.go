package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// PushServiceClient talks to the push gateway, which owns installation
// records and fans one request out to every device the player registered.
type PushServiceClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

type pushRequest struct {
	PlayerID string `json:"player_id"`
	Alert    string `json:"alert"`
}

func NewPushServiceClient(baseURL, token string) *PushServiceClient {
	return &PushServiceClient{
		BaseURL: baseURL,
		Token:   token,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SendPush calls POST /push/send on the push service.
func (c *PushServiceClient) SendPush(ctx context.Context, playerID, message string) error {
	url := fmt.Sprintf("%s/push/send", c.BaseURL)

	jsonData, _ := json.Marshal(pushRequest{
		PlayerID: playerID,
		Alert:    message,
	})

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token) // match service → push service token

	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Printf("PushService /push/send returned %d: %s", resp.StatusCode, string(body))
		return fmt.Errorf("push delivery failed: %d", resp.StatusCode)
	}

	return nil
}
