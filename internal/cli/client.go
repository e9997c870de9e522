package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// SchemaResponse — схема из API.
type SchemaResponse struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Fields    []map[string]any `json:"fields"`
	IsActive  bool             `json:"is_active"`
	CreatedAt string           `json:"created_at"`
	UpdatedAt string           `json:"updated_at"`
}

// GraphResponse — превью графа зависимостей из API.
type GraphResponse struct {
	Waves    []WaveResponse      `json:"waves"`
	Edges    map[string][]string `json:"edges"`
	Warnings []string            `json:"warnings,omitempty"`
}

// WaveResponse — одна волна графа.
type WaveResponse struct {
	Index  int      `json:"index"`
	Fields []string `json:"fields"`
}

// JobResponse — job из API.
type JobResponse struct {
	ID         string         `json:"id"`
	SchemaID   string         `json:"schema_id"`
	Status     string         `json:"status"`
	Inputs     map[string]any `json:"inputs,omitempty"`
	Results    map[string]any `json:"results,omitempty"`
	StartedAt  string         `json:"started_at,omitempty"`
	FinishedAt string         `json:"finished_at,omitempty"`
	Error      string         `json:"error,omitempty"`
	CreatedAt  string         `json:"created_at"`
}

// FieldResultResponse — результат поля из API.
type FieldResultResponse struct {
	FieldID   string `json:"field_id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	Value     any    `json:"value,omitempty"`
	Error     string `json:"error,omitempty"`
	UpdatedAt string `json:"updated_at"`
}

// --- Request types ---

// UpdateSchemaRequest — обновление схемы.
type UpdateSchemaRequest struct {
	Name     *string         `json:"name,omitempty"`
	Fields   json.RawMessage `json:"fields,omitempty"`
	IsActive *bool           `json:"is_active,omitempty"`
}

// CreateJobRequest — создание job.
type CreateJobRequest struct {
	Inputs map[string]any `json:"inputs,omitempty"`
}

// ListJobsOpts — параметры фильтрации jobs.
type ListJobsOpts struct {
	SchemaID string
	Status   string
	Limit    int
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type listResponse struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для Fieldmill API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// --- Schemas ---

// ListSchemas возвращает все схемы.
func (c *Client) ListSchemas() ([]SchemaResponse, error) {
	var schemas []SchemaResponse
	err := c.list("/api/v1/schemas", nil, &schemas)
	return schemas, err
}

// CreateSchema создаёт новую схему из JSON-документа.
func (c *Client) CreateSchema(doc json.RawMessage) (*SchemaResponse, error) {
	var schema SchemaResponse
	err := c.doData(http.MethodPost, "/api/v1/schemas", doc, &schema)
	return &schema, err
}

// GetSchema возвращает схему по ID.
func (c *Client) GetSchema(id string) (*SchemaResponse, error) {
	var schema SchemaResponse
	err := c.get("/api/v1/schemas/"+id, &schema)
	return &schema, err
}

// UpdateSchema обновляет схему.
func (c *Client) UpdateSchema(id string, req UpdateSchemaRequest) (*SchemaResponse, error) {
	var schema SchemaResponse
	err := c.put("/api/v1/schemas/"+id, req, &schema)
	return &schema, err
}

// DeleteSchema удаляет схему.
func (c *Client) DeleteSchema(id string) error {
	return c.delete("/api/v1/schemas/" + id)
}

// GetSchemaGraph возвращает превью графа зависимостей схемы.
func (c *Client) GetSchemaGraph(id string) (*GraphResponse, error) {
	var graph GraphResponse
	err := c.get("/api/v1/schemas/"+id+"/graph", &graph)
	return &graph, err
}

// --- Jobs ---

// ListJobs возвращает список jobs с фильтрацией.
func (c *Client) ListJobs(opts ListJobsOpts) ([]JobResponse, error) {
	params := url.Values{}
	if opts.SchemaID != "" {
		params.Set("schema_id", opts.SchemaID)
	}
	if opts.Status != "" {
		params.Set("status", opts.Status)
	}
	if opts.Limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", opts.Limit))
	}

	var jobs []JobResponse
	err := c.list("/api/v1/jobs", params, &jobs)
	return jobs, err
}

// CreateJob создаёт job для схемы.
func (c *Client) CreateJob(schemaID string, req CreateJobRequest) (*JobResponse, error) {
	var job JobResponse
	err := c.post("/api/v1/schemas/"+schemaID+"/jobs", req, &job)
	return &job, err
}

// GetJob возвращает job по ID.
func (c *Client) GetJob(id string) (*JobResponse, error) {
	var job JobResponse
	err := c.get("/api/v1/jobs/"+id, &job)
	return &job, err
}

// CancelJob отменяет job.
func (c *Client) CancelJob(id string) (*JobResponse, error) {
	var job JobResponse
	err := c.post("/api/v1/jobs/"+id+"/cancel", nil, &job)
	return &job, err
}

// ListResults возвращает результаты полей job.
func (c *Client) ListResults(jobID string) ([]FieldResultResponse, error) {
	var results []FieldResultResponse
	err := c.list("/api/v1/jobs/"+jobID+"/results", nil, &results)
	return results, err
}

// GetSummary возвращает summary-представление результатов job.
func (c *Client) GetSummary(jobID string) (map[string]map[string]any, error) {
	var summary map[string]map[string]any
	err := c.get("/api/v1/jobs/"+jobID+"/summary", &summary)
	return summary, err
}

// --- HTTP helpers ---

func (c *Client) get(path string, result any) error {
	return c.doData(http.MethodGet, path, nil, result)
}

func (c *Client) post(path string, body any, result any) error {
	return c.doData(http.MethodPost, path, body, result)
}

func (c *Client) put(path string, body any, result any) error {
	return c.doData(http.MethodPut, path, body, result)
}

func (c *Client) delete(path string) error {
	resp, err := c.do(http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.checkError(resp)
}

func (c *Client) list(path string, params url.Values, result any) error {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}

	resp, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return json.Unmarshal(lr.Data, result)
}

func (c *Client) doData(method, path string, body any, result any) error {
	resp, err := c.do(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	// 204 No Content
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if result != nil {
		return json.Unmarshal(dr.Data, result)
	}
	return nil
}

func (c *Client) do(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}
