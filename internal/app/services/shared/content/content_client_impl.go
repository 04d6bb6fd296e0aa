package content

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"studyflow-service/internal/app/contracts"
	"studyflow-service/internal/app/models"
	"studyflow-service/internal/pkg/dto"
	"studyflow-service/internal/pkg/exceptions"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

var (
	contentClientInstance contracts.InstanceContentClient
	onceContentClient     sync.Once
)

// contentClient talks to the questionnaire-content collaborator, which owns
// the instance content rows and assigns their ids.
type contentClient struct {
	BaseUrl string
	Log     *zap.Logger
	client  *http.Client
}

func NewContentClient(baseUrl string, logger *zap.Logger) contracts.InstanceContentClient {
	onceContentClient.Do(func() {
		client := &contentClient{
			BaseUrl: baseUrl + "/questionnaireInstances",
			Log:     logger,
			client:  &http.Client{Timeout: 15 * time.Second},
		}
		contentClientInstance = client
	})
	return contentClientInstance
}

func (c *contentClient) CreateInstances(ctx context.Context, batch []dto.CreateInstanceRequest) ([]models.QuestionnaireInstance, error) {
	requestJSON, err := json.Marshal(batch)
	if err != nil {
		return nil, exceptions.ErrCannotMarshalJSON(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseUrl, bytes.NewBuffer(requestJSON))
	if err != nil {
		return nil, exceptions.ErrContentRequest(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.Log.Error("contentClient.CreateInstances error sending HTTP request", zap.Error(err))
		return nil, exceptions.ErrContentRequest(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		c.Log.Error("contentClient.CreateInstances unexpected response status",
			zap.Int("status_code", resp.StatusCode),
			zap.ByteString("response", bodyBytes),
		)
		return nil, exceptions.ErrContentRequest(fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var createdInstances []models.QuestionnaireInstance
	if err := json.NewDecoder(resp.Body).Decode(&createdInstances); err != nil {
		return nil, exceptions.ErrCannotUnmarshalJSON(err)
	}
	return createdInstances, nil
}
