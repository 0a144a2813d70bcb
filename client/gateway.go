package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"homehub/models"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"
)

// APIClient implements DeviceGateway and RequestGateway against the
// HomeHub REST API, and exposes the live update channel over WebSocket.
type APIClient struct {
	baseURL string
	token   string
	httpc   *http.Client
	logger  *zap.Logger
}

// NewAPIClient creates a gateway bound to a server and bearer token.
func NewAPIClient(baseURL, token string, logger *zap.Logger) *APIClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpc:   &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

func (c *APIClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		data, _ := io.ReadAll(resp.Body)
		if err := json.Unmarshal(data, &apiErr); err == nil {
			msg := apiErr.Message
			if msg == "" {
				msg = apiErr.Error
			}
			if msg != "" {
				return fmt.Errorf("%s %s: %s (status %d)", method, path, msg, resp.StatusCode)
			}
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response of %s %s: %w", method, path, err)
	}
	return nil
}

// GetDevice reads one device.
func (c *APIClient) GetDevice(ctx context.Context, id string) (*models.Device, error) {
	var device models.Device
	if err := c.do(ctx, http.MethodGet, "/api/devices/"+id, nil, &device); err != nil {
		return nil, err
	}
	return &device, nil
}

// ListDevices reads the device listing visible to the actor.
func (c *APIClient) ListDevices(ctx context.Context) ([]models.Device, error) {
	var devices []models.Device
	if err := c.do(ctx, http.MethodGet, "/api/devices", nil, &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

// UpdateStatus applies a direct status mutation.
func (c *APIClient) UpdateStatus(ctx context.Context, id string, status models.DeviceStatus) (*models.Device, error) {
	var device models.Device
	body := map[string]models.DeviceStatus{"status": status}
	if err := c.do(ctx, http.MethodPatch, "/api/devices/"+id+"/status", body, &device); err != nil {
		return nil, err
	}
	return &device, nil
}

// Submit files a control request.
func (c *APIClient) Submit(ctx context.Context, in models.DeviceRequestInput) (*models.DeviceRequest, error) {
	var req models.DeviceRequest
	if err := c.do(ctx, http.MethodPost, "/api/requests", in, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// ListMine reads the actor's own control requests.
func (c *APIClient) ListMine(ctx context.Context) ([]models.DeviceRequest, error) {
	var requests []models.DeviceRequest
	if err := c.do(ctx, http.MethodGet, "/api/requests/mine", nil, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// StreamEvents opens the WebSocket live update channel and feeds events
// into the returned channel until the context is cancelled or the
// connection drops. The channel is closed on exit.
func (c *APIClient) StreamEvents(ctx context.Context) (<-chan models.Event, error) {
	wsURL := strings.Replace(c.baseURL, "http", "ws", 1) + "/api/stream"
	conn, _, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{
		HTTPHeader: http.Header{"Authorization": []string{"Bearer " + c.token}},
	})
	if err != nil {
		return nil, fmt.Errorf("dial event stream: %w", err)
	}

	events := make(chan models.Event, 64)
	go func() {
		defer close(events)
		defer conn.Close(websocket.StatusNormalClosure, "closed")
		for {
			var ev models.Event
			if err := wsjson.Read(ctx, conn, &ev); err != nil {
				if ctx.Err() == nil {
					c.logger.Warn("event stream closed", zap.Error(err))
				}
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, nil
}
