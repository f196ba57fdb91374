// Package modelsvc is an HTTP client for the external NLP model service that
// hosts the NER and sentiment models. The service exposes small JSON
// endpoints; model internals stay behind this boundary.
package modelsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/doculens/backend/internal/util"
	"github.com/doculens/backend/pkg/common"
)

// Transient transport failures are retried; context errors abort immediately.
const postAttempts = 3

// Client calls the NLP model service. It implements nlp.EntityExtractor and
// nlp.SentimentAnalyzer.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// Params configures a model service client.
type Params struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// NewClient creates a model service client. The default request timeout is
// five minutes, matching the worst-case inference time for large documents.
func NewClient(params Params) *Client {
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Client{
		baseURL: params.BaseURL,
		apiKey:  params.APIKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type textRequest struct {
	Text string `json:"text"`
}

type keyPhraseRequest struct {
	Text string `json:"text"`
	TopN int    `json:"top_n"`
}

type sentimentRequest struct {
	Text      string `json:"text"`
	ChunkSize int    `json:"chunk_size"`
}

// ExtractEntities runs named entity recognition on the text.
func (c *Client) ExtractEntities(ctx context.Context, text string) (*common.EntitySet, error) {
	var out common.EntitySet
	if err := c.post(ctx, "/v1/entities", textRequest{Text: text}, &out); err != nil {
		return nil, fmt.Errorf("entity extraction failed: %w", err)
	}
	return &out, nil
}

// ExtractRelationships extracts (subject, relation, object) triples.
func (c *Client) ExtractRelationships(ctx context.Context, text string) ([]common.Relationship, error) {
	var out struct {
		Relationships []common.Relationship `json:"relationships"`
	}
	if err := c.post(ctx, "/v1/relationships", textRequest{Text: text}, &out); err != nil {
		return nil, fmt.Errorf("relationship extraction failed: %w", err)
	}
	return out.Relationships, nil
}

// ExtractDates extracts date mentions with their character spans.
func (c *Client) ExtractDates(ctx context.Context, text string) ([]common.DateMention, error) {
	var out struct {
		Dates []common.DateMention `json:"dates"`
	}
	if err := c.post(ctx, "/v1/dates", textRequest{Text: text}, &out); err != nil {
		return nil, fmt.Errorf("date extraction failed: %w", err)
	}
	return out.Dates, nil
}

// ExtractKeyPhrases extracts the topN most meaningful noun phrases.
func (c *Client) ExtractKeyPhrases(ctx context.Context, text string, topN int) ([]common.KeyPhrase, error) {
	var out struct {
		KeyPhrases []common.KeyPhrase `json:"key_phrases"`
	}
	if err := c.post(ctx, "/v1/key-phrases", keyPhraseRequest{Text: text, TopN: topN}, &out); err != nil {
		return nil, fmt.Errorf("key phrase extraction failed: %w", err)
	}
	return out.KeyPhrases, nil
}

// AnalyzeChunks scores sentiment per chunk of chunkSize words and returns the
// aggregate.
func (c *Client) AnalyzeChunks(ctx context.Context, text string, chunkSize int) (*common.SentimentResult, error) {
	var out common.SentimentResult
	if err := c.post(ctx, "/v1/sentiment", sentimentRequest{Text: text, ChunkSize: chunkSize}, &out); err != nil {
		return nil, fmt.Errorf("sentiment analysis failed: %w", err)
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	data, err := util.RetryWithContext(ctx, postAttempts, func(ctx context.Context) ([]byte, error) {
		return c.doPost(ctx, path, payload)
	})
	if err != nil {
		return err
	}

	return json.Unmarshal(data, out)
}

func (c *Client) doPost(ctx context.Context, path string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, fmt.Errorf("model service returned %d: %s", res.StatusCode, string(data))
	}

	return io.ReadAll(res.Body)
}
