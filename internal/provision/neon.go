package provision

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	neonBaseURL = "https://console.neon.tech/api/v2"
	neonTimeout = 30 * time.Second
)

// NeonClient provisions per-workspace Postgres projects through the
// Neon API.
type NeonClient struct {
	client *resty.Client
	region string
}

// NewNeonClient creates a Neon API client authenticated with the given
// API key.
func NewNeonClient(apiKey string) *NeonClient {
	client := resty.New().
		SetBaseURL(neonBaseURL).
		SetAuthToken(apiKey).
		SetTimeout(neonTimeout).
		SetHeader("Accept", "application/json")

	return &NeonClient{
		client: client,
		region: "aws-us-east-1",
	}
}

// createProjectRequest is the Neon project-creation payload.
type createProjectRequest struct {
	Project struct {
		Name     string `json:"name"`
		RegionID string `json:"region_id"`
	} `json:"project"`
}

// createProjectResponse is the subset of the Neon response we use.
type createProjectResponse struct {
	Project struct {
		ID string `json:"id"`
	} `json:"project"`
	ConnectionURIs []struct {
		ConnectionURI        string `json:"connection_uri"`
		ConnectionParameters struct {
			PoolerHost string `json:"pooler_host"`
		} `json:"connection_parameters"`
	} `json:"connection_uris"`
}

// CreateProject provisions a dedicated Neon project for a workspace.
func (n *NeonClient) CreateProject(ctx context.Context, workspaceName string) (*DatabaseProject, error) {
	var body createProjectRequest
	body.Project.Name = workspaceName
	body.Project.RegionID = n.region

	var result createProjectResponse
	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		Post("/projects")
	if err != nil {
		return nil, fmt.Errorf("neon create project: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("neon create project: status %d: %s", resp.StatusCode(), resp.String())
	}
	if result.Project.ID == "" || len(result.ConnectionURIs) == 0 {
		return nil, fmt.Errorf("neon create project: incomplete response")
	}

	uri := result.ConnectionURIs[0]
	return &DatabaseProject{
		ProjectID:     result.Project.ID,
		ConnectionURL: uri.ConnectionURI,
		PoolerURL:     poolerURL(uri.ConnectionURI, uri.ConnectionParameters.PoolerHost),
	}, nil
}

// DeleteProject tears down a Neon project. Used when a workspace is
// deleted; failures are logged by the caller, not retried.
func (n *NeonClient) DeleteProject(ctx context.Context, projectID string) error {
	resp, err := n.client.R().
		SetContext(ctx).
		Delete("/projects/" + projectID)
	if err != nil {
		return fmt.Errorf("neon delete project: %w", err)
	}
	if resp.IsError() && resp.StatusCode() != 404 {
		return fmt.Errorf("neon delete project: status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

// Enabled reports whether the integration is configured.
func (n *NeonClient) Enabled() bool { return true }

// poolerURL rewrites the direct connection URI to point at the pooler
// host. Falls back to the direct URI when no pooler host is reported.
func poolerURL(connectionURI, poolerHost string) string {
	if poolerHost == "" {
		return connectionURI
	}
	u, err := url.Parse(connectionURI)
	if err != nil {
		return connectionURI
	}
	u.Host = poolerHost
	return u.String()
}
